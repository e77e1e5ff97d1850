package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baharkarakas/asso-backend/internal/api/httpx"
	"github.com/baharkarakas/asso-backend/internal/api/validate"
	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/services"
)

type CotisationHandler struct {
	Svc *services.CotisationService
}

func NewCotisationHandler(svc *services.CotisationService) *CotisationHandler {
	return &CotisationHandler{Svc: svc}
}

type cotisationReq struct {
	Amount        optFloat  `json:"amount"`
	StartPeriod   optTime   `json:"start_period"`
	EndPeriod     optTime   `json:"end_period"`
	PaymentMethod string    `json:"payment_method"`
	PaymentDate   optTime   `json:"payment_date"`
	Notes         optString `json:"notes"`
}

func required(field string, set bool) *validate.ErrField {
	if set {
		return nil
	}
	return &validate.ErrField{Field: field, Msg: "required"}
}

func (h *CotisationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cotisationReq
	if _, err := bind(w, r, &req, ""); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := validate.Collect(
		required("amount", req.Amount.Set),
		required("start_period", req.StartPeriod.Set),
		required("end_period", req.EndPeriod.Set),
		validate.Required("payment_method", req.PaymentMethod),
	); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	c, err := h.Svc.Create(r.Context(), auth.FromContext(r.Context()), services.CotisationInput{
		Amount:        req.Amount.Val,
		StartPeriod:   req.StartPeriod.Val,
		EndPeriod:     req.EndPeriod.Val,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Notes:         req.Notes.Val,
		PaymentDate:   req.PaymentDate.Ptr(),
	})
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusCreated, c)
}

func (h *CotisationHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Svc.List(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteList(w, cs)
}

func (h *CotisationHandler) Mine(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Svc.Mine(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteList(w, cs)
}

// CheckStatus reports the caller's standing; ?as_of=YYYY-MM-DD overrides today.
func (h *CotisationHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	var asOf time.Time
	if v := r.URL.Query().Get("as_of"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			httpx.WriteErr(w, r, apperr.Wrap(apperr.Validation, "as_of: "+err.Error(), err))
			return
		}
		asOf = t
	}
	st, err := h.Svc.CurrentStatus(r.Context(), auth.FromContext(r.Context()), asOf)
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, st)
}

func (h *CotisationHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, c)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *CotisationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if _, err := bind(w, r, &req, ""); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	if err := validate.Collect(validate.Required("status", req.Status)); err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	c, err := h.Svc.UpdateStatus(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), models.CotisationStatus(req.Status))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, c)
}

func (h *CotisationHandler) History(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Svc.History(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteErr(w, r, err)
		return
	}
	httpx.WriteList(w, logs)
}
