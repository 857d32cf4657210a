// Package status applies downstream-submitted status transitions to stored
// orders.
package status

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrussa/order-bridge/internal/store"
)

// ErrInvalid marks a status payload that fails validation.
var ErrInvalid = errors.New("invalid status payload")

var validate = validator.New()

// Request is the downstream status-update body. FullCode and Code are
// optional; defaults are derived from Status.
type Request struct {
	Status   string `json:"status" validate:"required"`
	FullCode string `json:"fullCode"`
	Code     string `json:"code"`
}

// Update validates the request, derives fullCode (upper-cased status) and
// code (first three upper-cased characters) when absent, and delegates the
// mutation to the store.
func Update(st *store.Store, orderID string, req Request) (store.Record, error) {
	if err := validate.Struct(req); err != nil {
		return store.Record{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	up := strings.ToUpper(strings.TrimSpace(req.Status))
	if up == "" {
		return store.Record{}, fmt.Errorf("%w: status is blank", ErrInvalid)
	}

	fullCode := req.FullCode
	if fullCode == "" {
		fullCode = up
	}
	code := req.Code
	if code == "" {
		code = up
		if len(code) > 3 {
			code = code[:3]
		}
	}
	return st.ApplyStatus(orderID, up, fullCode, code)
}
