// Package binder decodes HTTP requests into typed request structs.
//
// Binders skip requests they do not apply to by returning
// ErrBinderNotApplicable, so several can be chained for one handler.
// All bound string fields are trimmed.
package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"

	"github.com/edutrack/institute/pkg/sanitizer"
)

// MaxJSONSize bounds request bodies.
const MaxJSONSize = 1 << 20

var (
	ErrFailedToParseJSON    = errors.New("binder: failed to parse JSON")
	ErrMissingContentType   = errors.New("binder: missing content type")
	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrBinderNotApplicable  = errors.New("binder: not applicable")
	ErrInvalidTarget        = errors.New("binder: target must be a non-nil struct pointer")
)

// JSON decodes application/json bodies in strict mode. Requests without a
// body (GET, DELETE, HEAD) are skipped.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodDelete:
			return ErrBinderNotApplicable
		}

		ct := r.Header.Get("Content-Type")
		if ct == "" {
			return fmt.Errorf("%w: expected application/json", ErrMissingContentType)
		}
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != "application/json" {
			return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, ct)
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, MaxJSONSize+1))
		if err != nil {
			return fmt.Errorf("%w: read body: %v", ErrFailedToParseJSON, err)
		}
		if len(body) > MaxJSONSize {
			return fmt.Errorf("%w: body larger than %d bytes", ErrFailedToParseJSON, MaxJSONSize)
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return fmt.Errorf("%w: %v", ErrFailedToParseJSON, err)
		}
		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON object", ErrFailedToParseJSON)
		}

		return trimStrings(v)
	}
}

// Query fills string fields tagged `query:"name"` from the URL query.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv, err := structElem(v)
		if err != nil {
			return err
		}
		q := r.URL.Query()
		rt := rv.Type()
		for i := range rt.NumField() {
			name := rt.Field(i).Tag.Get("query")
			if name == "" || name == "-" {
				continue
			}
			f := rv.Field(i)
			if f.Kind() == reflect.String && f.CanSet() && q.Has(name) {
				f.SetString(sanitizer.Trim(q.Get(name)))
			}
		}
		return nil
	}
}

func structElem(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, ErrInvalidTarget
	}
	return rv.Elem(), nil
}

// trimStrings trims top-level string and *string fields.
func trimStrings(v any) error {
	rv, err := structElem(v)
	if err != nil {
		// Non-struct targets (maps, slices) are left as decoded.
		return nil
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch {
		case f.Kind() == reflect.String:
			f.SetString(sanitizer.Trim(f.String()))
		case f.Kind() == reflect.Pointer && !f.IsNil() && f.Elem().Kind() == reflect.String:
			f.Elem().SetString(sanitizer.Trim(f.Elem().String()))
		}
	}
	return nil
}

// Validatable is implemented by request structs that check themselves.
type Validatable interface {
	Validate() error
}

// Validate runs v.Validate after the decoding binders. Chain it last.
func Validate() func(r *http.Request, v any) error {
	return func(_ *http.Request, v any) error {
		if vv, ok := v.(Validatable); ok {
			return vv.Validate()
		}
		return ErrBinderNotApplicable
	}
}
