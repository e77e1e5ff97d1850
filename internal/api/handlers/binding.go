package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/uploads"
)

const (
	maxJSONBody  = 1 << 20
	maxFormBytes = 16 << 20
)

// bind decodes a JSON or multipart body into dst. For multipart requests the form
// values are decoded as JSON strings, which the opt* types below accept, and the
// file under fileField (if any) is returned.
func bind(w http.ResponseWriter, r *http.Request, dst any, fileField string) (*multipart.FileHeader, error) {
	bad := func(err error) error { return apperr.Wrap(apperr.Validation, "invalid request body", err) }

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return nil, bad(err)
		}
		values := map[string]string{}
		for k, v := range r.MultipartForm.Value {
			if len(v) > 0 {
				values[k] = v[0]
			}
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, bad(err)
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, bad(err)
		}
		if fileField != "" {
			if fhs := r.MultipartForm.File[fileField]; len(fhs) > 0 {
				return fhs[0], nil
			}
		}
		return nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return nil, bad(err)
	}
	return nil, nil
}

// saveUpload stores fh when present. Upload rejections are validation errors.
func saveUpload(files *uploads.Store, fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", nil
	}
	path, err := files.Save(fh)
	switch {
	case err == nil:
		return path, nil
	case errors.Is(err, uploads.ErrUnsupportedType), errors.Is(err, uploads.ErrTooLarge):
		return "", apperr.Wrap(apperr.Validation, err.Error(), err)
	default:
		return "", apperr.Wrap(apperr.Internal, "save upload", err)
	}
}

func isNull(b []byte) bool { return string(b) == "null" }

// optString records whether the field was present at all.
type optString struct {
	Set bool
	Val string
}

func (o *optString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if isNull(b) {
		return nil
	}
	return json.Unmarshal(b, &o.Val)
}

func (o optString) Ptr() *string {
	if !o.Set {
		return nil
	}
	v := o.Val
	return &v
}

// optInt accepts a number or a numeric string. null and "" mark the value as cleared.
type optInt struct {
	Set  bool
	Null bool
	Val  int
}

func (o *optInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if isNull(b) {
		o.Null = true
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "null" {
			o.Null = true
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("expected an integer")
		}
		o.Val = n
		return nil
	}
	return json.Unmarshal(b, &o.Val)
}

func (o optInt) Ptr() *int {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Val
	return &v
}

// optFloat accepts a number or a numeric string.
type optFloat struct {
	Set bool
	Val float64
}

func (o *optFloat) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return nil
	}
	o.Set = true
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errors.New("expected a number")
		}
		o.Val = f
		return nil
	}
	return json.Unmarshal(b, &o.Val)
}

// optTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (taken as UTC midnight).
type optTime struct {
	Set bool
	Val time.Time
}

func (o *optTime) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("expected a date string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	o.Set, o.Val = true, t
	return nil
}

func (o optTime) Ptr() *time.Time {
	if !o.Set {
		return nil
	}
	v := o.Val
	return &v
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("expected a date as YYYY-MM-DD or RFC 3339")
}
