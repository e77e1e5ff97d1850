package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/metrics"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/policy"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/sanitize"
)

// receiptAttempts is how many receipt numbers are tried before giving up on a create.
const receiptAttempts = 5

const receiptAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ReceiptFunc returns a receipt number for a cotisation recorded at now.
type ReceiptFunc func(now time.Time) (string, error)

// NewReceiptNumber formats COT-YYYYMM-XXXXXX with a random base-36 suffix.
func NewReceiptNumber(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	limit := big.NewInt(int64(len(receiptAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		suffix[i] = receiptAlphabet[n.Int64()]
	}
	return "COT-" + now.Format("200601") + "-" + string(suffix), nil
}

type CotisationService struct {
	r       repo.Cotisations
	logs    repo.AuditLogs
	pop     populator
	now     func() time.Time
	receipt ReceiptFunc
}

func NewCotisationService(r repo.Cotisations, logs repo.AuditLogs, sums *cache.Summaries) *CotisationService {
	return &CotisationService{
		r:       r,
		logs:    logs,
		pop:     populator{sums},
		now:     func() time.Time { return time.Now().UTC() },
		receipt: NewReceiptNumber,
	}
}

// WithClock replaces the time source; used by tests.
func (s *CotisationService) WithClock(now func() time.Time) *CotisationService {
	s.now = now
	return s
}

// WithReceipts replaces the receipt generator; used by tests.
func (s *CotisationService) WithReceipts(f ReceiptFunc) *CotisationService {
	s.receipt = f
	return s
}

type CotisationInput struct {
	Amount        float64
	StartPeriod   time.Time
	EndPeriod     time.Time
	PaymentMethod models.PaymentMethod
	Notes         string
	PaymentDate   *time.Time // defaults to now
}

// Create records a pending cotisation for actor. A receipt number already in use is
// regenerated up to receiptAttempts times.
func (s *CotisationService) Create(ctx context.Context, actor auth.Identity, in CotisationInput) (CotisationView, error) {
	if err := policy.Require(actor, policy.Cotisation, policy.Create, ""); err != nil {
		return CotisationView{}, err
	}
	now := s.now()
	c := models.Cotisation{
		ID:            uuid.NewString(),
		MemberID:      actor.ID,
		Amount:        in.Amount,
		PaymentDate:   now,
		StartPeriod:   in.StartPeriod,
		EndPeriod:     in.EndPeriod,
		PaymentMethod: in.PaymentMethod,
		Status:        models.CotisationPending,
		Notes:         sanitize.Text(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.PaymentDate != nil && !in.PaymentDate.IsZero() {
		c.PaymentDate = *in.PaymentDate
	}
	if err := c.Validate(); err != nil {
		return CotisationView{}, apperr.Wrap(apperr.Validation, "", err)
	}

	for attempt := 1; ; attempt++ {
		num, err := s.receipt(now)
		if err != nil {
			return CotisationView{}, apperr.Wrap(apperr.Internal, "generate receipt number", err)
		}
		c.ReceiptNumber = num
		err = s.r.Create(ctx, c)
		if err == nil {
			break
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return CotisationView{}, storeErr(err, "cotisation")
		}
		metrics.ReceiptCollisions.Inc()
		if attempt == receiptAttempts {
			return CotisationView{}, apperr.New(apperr.Validation, "could not allocate a unique receipt number, try again")
		}
	}
	metrics.CotisationsCreated.Inc()
	return s.pop.cotisation(ctx, c)
}

// List returns every cotisation, newest payment first. Admin only.
func (s *CotisationService) List(ctx context.Context, actor auth.Identity) ([]CotisationView, error) {
	if err := policy.Require(actor, policy.Cotisation, policy.List, ""); err != nil {
		return nil, err
	}
	return s.list(ctx, repo.CotisationFilter{})
}

// Mine returns the actor's own cotisations, newest payment first.
func (s *CotisationService) Mine(ctx context.Context, actor auth.Identity) ([]CotisationView, error) {
	if err := policy.Require(actor, policy.Cotisation, policy.ListOwn, actor.ID); err != nil {
		return nil, err
	}
	return s.list(ctx, repo.CotisationFilter{MemberID: actor.ID})
}

func (s *CotisationService) list(ctx context.Context, f repo.CotisationFilter) ([]CotisationView, error) {
	cs, err := s.r.List(ctx, f)
	if err != nil {
		return nil, storeErr(err, "cotisation")
	}
	return s.pop.cotisations(ctx, cs)
}

func (s *CotisationService) Get(ctx context.Context, actor auth.Identity, id string) (CotisationView, error) {
	if !actor.Authenticated() {
		return CotisationView{}, apperr.New(apperr.Unauthorized, "authentication required")
	}
	c, err := s.r.GetByID(ctx, id)
	if err != nil {
		return CotisationView{}, storeErr(err, "cotisation")
	}
	if err := policy.Require(actor, policy.Cotisation, policy.Read, c.MemberID); err != nil {
		return CotisationView{}, err
	}
	return s.pop.cotisation(ctx, c)
}

// UpdateStatus sets any valid status; transitions are not restricted. Admin only.
func (s *CotisationService) UpdateStatus(ctx context.Context, actor auth.Identity, id string, status models.CotisationStatus) (CotisationView, error) {
	if err := policy.Require(actor, policy.Cotisation, policy.UpdateStatus, ""); err != nil {
		return CotisationView{}, err
	}
	if !status.Valid() {
		return CotisationView{}, apperr.New(apperr.Validation, "status must be one of pending, validated, rejected")
	}
	c, err := s.r.UpdateStatus(ctx, id, status)
	if err != nil {
		return CotisationView{}, storeErr(err, "cotisation")
	}
	metrics.CotisationStatusChanges.WithLabelValues(string(status)).Inc()
	audit(ctx, s.logs, "cotisation", id, actor.ID, "status_change", map[string]any{
		"status":         string(status),
		"receipt_number": c.ReceiptNumber,
	})
	return s.pop.cotisation(ctx, c)
}

// Standing reports whether a member's dues are current at AsOf.
type Standing struct {
	Active bool            `json:"is_active"`
	AsOf   time.Time       `json:"as_of"`
	Latest *CotisationView `json:"last_cotisation,omitempty"`
}

// CurrentStatus checks the actor's standing at asOf, or now when asOf is zero.
func (s *CotisationService) CurrentStatus(ctx context.Context, actor auth.Identity, asOf time.Time) (Standing, error) {
	if err := policy.Require(actor, policy.Cotisation, policy.ListOwn, actor.ID); err != nil {
		return Standing{}, err
	}
	return s.StandingOf(ctx, actor.ID, asOf)
}

// StandingOf is CurrentStatus without the caller check.
func (s *CotisationService) StandingOf(ctx context.Context, memberID string, asOf time.Time) (Standing, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	out := Standing{AsOf: asOf}
	c, err := s.r.LatestCovering(ctx, memberID, asOf)
	if errors.Is(err, repo.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return Standing{}, storeErr(err, "cotisation")
	}
	v, err := s.pop.cotisation(ctx, c)
	if err != nil {
		return Standing{}, err
	}
	out.Active = true
	out.Latest = &v
	return out, nil
}

// History lists the audit trail of a cotisation. Admin only.
func (s *CotisationService) History(ctx context.Context, actor auth.Identity, id string) ([]models.AuditLog, error) {
	if err := policy.Require(actor, policy.Cotisation, policy.UpdateStatus, ""); err != nil {
		return nil, err
	}
	if _, err := s.r.GetByID(ctx, id); err != nil {
		return nil, storeErr(err, "cotisation")
	}
	logs, err := s.logs.ListByEntity(ctx, "cotisation", id)
	return logs, storeErr(err, "cotisation")
}
