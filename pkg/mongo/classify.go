package mongo

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Failure is the closed set of classified storage errors.
// Only this package implements it.
type Failure interface {
	error
	storageFailure()
}

// DuplicateKeyError reports a unique index violation.
type DuplicateKeyError struct {
	Fields []string
	cause  error
}

func (e *DuplicateKeyError) Error() string {
	if len(e.Fields) == 0 {
		return "duplicate key"
	}
	return "duplicate key: " + strings.Join(e.Fields, ", ")
}

func (e *DuplicateKeyError) Unwrap() error { return e.cause }

// Has reports whether field is among the duplicated fields.
func (e *DuplicateKeyError) Has(field string) bool {
	return slices.Contains(e.Fields, field)
}

func (*DuplicateKeyError) storageFailure() {}

// OtherError wraps any driver failure that is not a known case.
type OtherError struct {
	Cause error
}

func (e *OtherError) Error() string { return fmt.Sprintf("storage: %v", e.Cause) }
func (e *OtherError) Unwrap() error { return e.Cause }
func (*OtherError) storageFailure() {}

type notFound struct{}

func (notFound) Error() string { return ErrNotFound.Error() }
func (notFound) Is(t error) bool { return t == ErrNotFound }
func (notFound) storageFailure() {}

// Classify maps a driver error onto the closed Failure set.
// It returns nil for a nil error.
func Classify(err error) Failure {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound{}
	case mongo.IsDuplicateKeyError(err):
		return &DuplicateKeyError{Fields: duplicateFields(err), cause: err}
	}

	var f Failure
	if errors.As(err, &f) {
		return f
	}
	return &OtherError{Cause: err}
}

// Err is Classify with a plain error result, for call sites that return error.
func Err(err error) error {
	if f := Classify(err); f != nil {
		return f
	}
	return nil
}

var dupIndexRe = regexp.MustCompile(`index: (\S+) dup key`)

// duplicateFields prefers the server-supplied keyPattern and falls back to
// the index name in the message ("email_1" -> "email").
func duplicateFields(err error) []string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if fields := keyPatternFields(e); len(fields) > 0 {
				return fields
			}
		}
	}

	m := dupIndexRe.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return nil
	}
	return indexNameFields(m[1])
}

func keyPatternFields(e mongo.WriteError) []string {
	if e.Raw == nil {
		return nil
	}
	doc, ok := e.Raw.Lookup("keyPattern").DocumentOK()
	if !ok {
		return nil
	}
	elems, err := doc.Elements()
	if err != nil {
		return nil
	}
	fields := make([]string, 0, len(elems))
	for _, el := range elems {
		fields = append(fields, el.Key())
	}
	return fields
}

// indexNameFields decodes the default index naming scheme field_dir[_field_dir...].
func indexNameFields(name string) []string {
	parts := strings.Split(name, "_")
	var fields []string
	for i := 0; i+1 < len(parts); i += 2 {
		fields = append(fields, parts[i])
	}
	if len(fields) == 0 {
		return []string{name}
	}
	return fields
}
