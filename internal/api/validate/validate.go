// Package validate holds request-level field checks that run before a service call.
package validate

import (
	"strconv"
	"strings"

	"github.com/baharkarakas/asso-backend/internal/apperr"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Collect keeps the non-nil checks and returns a Validation error, or nil when all passed.
func Collect(checks ...*ErrField) error {
	var errs Errs
	for _, c := range checks {
		if c != nil {
			errs = append(errs, *c)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return apperr.Wrap(apperr.Validation, errs.Error(), errs)
}

func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinLen(field, value string, min int) *ErrField {
	if len(value) < min {
		return &ErrField{Field: field, Msg: "must be at least " + strconv.Itoa(min) + " characters"}
	}
	return nil
}

func MinInt(field string, v, min int64) *ErrField {
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatInt(min, 10)}
	}
	return nil
}

// OneOf accepts the empty string so optional enums can fall back to their default.
func OneOf(field, value string, allowed ...string) *ErrField {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ErrField{Field: field, Msg: "must be one of " + strings.Join(allowed, ", ")}
}
