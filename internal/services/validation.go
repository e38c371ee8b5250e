package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/primefinance/backend/internal/ledger"
)

const maxBodyBytes = 1_048_576 // 1 MB

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
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

// DecodeJSON reads a single JSON object from the request body into dst,
// rejecting unknown fields and trailing data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must only contain a single JSON object")
	}
	return nil
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	errorResp := ErrorResponse{Error: message}

	var verrs validator.ValidationErrors
	if errors.As(validationErr, &verrs) {
		errorResp.Details = make(map[string]string)
		for _, err := range verrs {
			errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
		}
	}

	SendJSON(w, statusCode, errorResp)
}

// SendJSON writes v as a JSON response body.
func SendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// LedgerErrorStatus maps a ledger error to its HTTP status code.
func LedgerErrorStatus(err error) int {
	var (
		notFound     *ledger.NotFoundError
		invalid      *ledger.InvalidAmountError
		outOfRange   *ledger.AmountOutOfRangeError
		insufficient *ledger.InsufficientFundsError
		badState     *ledger.InvalidStateError
		persistence  *ledger.PersistenceError
	)
	switch {
	case errors.Is(err, ledger.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.Is(err, ledger.ErrSameAccount), errors.Is(err, ledger.ErrAccountName):
		return http.StatusBadRequest
	case errors.As(err, &outOfRange), errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	case errors.As(err, &badState):
		return http.StatusConflict
	case errors.As(err, &persistence):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// SendLedgerError writes err using the status from LedgerErrorStatus.
// Persistence and unexpected failures are reported without their cause.
func SendLedgerError(w http.ResponseWriter, err error) {
	status := LedgerErrorStatus(err)
	message := err.Error()
	switch status {
	case http.StatusBadGateway:
		message = "Ledger storage unavailable, nothing was changed"
	case http.StatusInternalServerError:
		message = "An Internal Error Occurred"
	}
	SendErrorResponse(w, message, status, nil)
}
