package crud

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/validate"
)

const maxBodyBytes = 1 << 20

// bodyError reports a request body that is not a JSON object.
type bodyError struct {
	err error
}

func (e *bodyError) Error() string { return "JSON parse error - " + e.err.Error() }

func (e *bodyError) Unwrap() error { return e.err }

// DecodeJSON overlays the request body onto *in. Keys missing from the body
// keep the values already in *in.
func DecodeJSON(c *gin.Context, in any) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return &bodyError{err: err}
	}
	return Overlay(body, in)
}

// Overlay merges the JSON object body over the JSON form of *in and decodes
// the result back into *in.
func Overlay(body []byte, in any) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(body, &patch); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &bodyError{err: errors.New("expected a JSON object")}
		}
		return &bodyError{err: err}
	}

	base, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode base: %w", err)
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return fmt.Errorf("decode base: %w", err)
	}
	for k, v := range patch {
		merged[k] = v
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encode merged: %w", err)
	}

	// Decode into a fresh value so pointers shared with stored rows are never
	// written through.
	fresh, err := zeroOf(in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, fresh); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validate.Errors{typeErr.Field: typeMessage(typeErr)}
		}
		return &bodyError{err: err}
	}
	reflect.ValueOf(in).Elem().Set(reflect.ValueOf(fresh).Elem())
	return nil
}

func typeMessage(err *json.UnmarshalTypeError) string {
	t := err.Type
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.Float32, reflect.Float64:
		return "A valid number is required."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	default:
		return "Invalid value."
	}
}

func zeroOf(ptr any) (any, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, errors.New("crud: decode target must be a non-nil pointer")
	}
	return reflect.New(v.Elem().Type()).Interface(), nil
}
