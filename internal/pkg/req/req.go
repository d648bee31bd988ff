/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for parsing JSON request bodies with strict decoding rules,
and integrates error handling to ensure data format correctness before business logic runs.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"parley/internal/pkg/errs"
)

// MaxBodyBytes defines the maximum allowed size (1 MB) for a JSON request body.
const MaxBodyBytes int64 = 1 << 20

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
// Unknown fields and trailing content are rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
