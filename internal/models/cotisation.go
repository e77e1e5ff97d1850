package models

import (
	"errors"
	"time"
)

type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayCheck    PaymentMethod = "check"
	PayTransfer PaymentMethod = "transfer"
	PayCard     PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCheck, PayTransfer, PayCard:
		return true
	}
	return false
}

type CotisationStatus string

const (
	CotisationPending   CotisationStatus = "pending"
	CotisationValidated CotisationStatus = "validated"
	CotisationRejected  CotisationStatus = "rejected"
)

func (s CotisationStatus) Valid() bool {
	return s == CotisationPending || s == CotisationValidated || s == CotisationRejected
}

type Cotisation struct {
	ID            string           `json:"id" bson:"_id"`
	MemberID      string           `json:"member_id" bson:"member_id"`
	Amount        float64          `json:"amount" bson:"amount"`
	PaymentDate   time.Time        `json:"payment_date" bson:"payment_date"`
	StartPeriod   time.Time        `json:"start_period" bson:"start_period"`
	EndPeriod     time.Time        `json:"end_period" bson:"end_period"`
	PaymentMethod PaymentMethod    `json:"payment_method" bson:"payment_method"`
	Status        CotisationStatus `json:"status" bson:"status"`
	ReceiptNumber string           `json:"receipt_number" bson:"receipt_number"`
	Notes         string           `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" bson:"updated_at"`
}

func (c *Cotisation) Validate() error {
	if c.Amount < 0 {
		return errors.New("amount must be >= 0")
	}
	if c.StartPeriod.IsZero() || c.EndPeriod.IsZero() {
		return errors.New("start_period and end_period are required")
	}
	if c.StartPeriod.After(c.EndPeriod) {
		return errors.New("start_period must not be after end_period")
	}
	if !c.PaymentMethod.Valid() {
		return errors.New("payment_method must be one of cash, check, transfer, card")
	}
	if c.Status == "" {
		c.Status = CotisationPending
	}
	if !c.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}

// Covers reports whether the cotisation counts toward good standing at asOf.
func (c Cotisation) Covers(asOf time.Time) bool {
	return c.Status == CotisationValidated && !c.EndPeriod.Before(asOf)
}
