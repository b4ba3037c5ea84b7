package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/snapedit/backend/internal/ledger"
	"github.com/snapedit/backend/internal/logger"
	"github.com/snapedit/backend/internal/middleware"
)

const maxBodyBytes = 1_048_576 // 1 MB

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Code    string            `json:"code,omitempty"`    // Machine readable error kind
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// MessageResponse is the result shape of ledger operations
// @Description Operation result with a user-facing message
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Registration successful! Your account is now pending approval."`
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// DecodeJSON reads a single JSON object into dst and validates it. On failure
// the error response has already been written.
func (vh *ValidationHelper) DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	log := logger.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		log.Debug().Err(err).Msg("invalid request body")
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		log.Debug().Msg("multiple JSON objects detected")
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := vh.ValidateStruct(dst); err != nil {
		log.Debug().Err(err).Msg("request validation failed")
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	errorResp := ErrorResponse{Error: message}

	var fieldErrs validator.ValidationErrors
	if errors.As(validationErr, &fieldErrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range fieldErrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	writeJSON(w, statusCode, errorResp)
}

// WriteLedgerError maps a ledger failure to its HTTP status. Store failures
// are logged and hidden behind a generic message.
func WriteLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	kind := ledger.KindOf(err)
	status := statusForKind(kind)

	if status == http.StatusInternalServerError {
		lg := logger.FromContext(r.Context())
		lg.Error().Err(err).Msg("ledger operation failed")
		writeJSON(w, status, ErrorResponse{Error: "An Internal Error Occurred", Code: string(kind)})
		return
	}

	resp := ErrorResponse{Error: err.Error(), Code: string(kind)}
	var le *ledger.Error
	if errors.As(err, &le) {
		resp.Error = le.Message
		resp.Details = le.Details
	}
	writeJSON(w, status, resp)
}

func statusForKind(kind ledger.Kind) int {
	switch kind {
	case ledger.KindInvalidInput, ledger.KindInvalidUsername, ledger.KindWeakPassword:
		return http.StatusBadRequest
	case ledger.KindInvalidCredentials:
		return http.StatusUnauthorized
	case ledger.KindInsufficientBalance:
		return http.StatusPaymentRequired
	case ledger.KindPendingApproval, ledger.KindBlocked, ledger.KindUnauthorized:
		return http.StatusForbidden
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindDuplicateUsername, ledger.KindInvalidTransition, ledger.KindAlreadyResolved:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requirePrincipal returns the authenticated caller or writes 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (ledger.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, "Authentication required", http.StatusUnauthorized, nil)
		return ledger.Principal{}, false
	}
	return p, true
}
