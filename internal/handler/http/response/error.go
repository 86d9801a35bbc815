package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/smc-analytics/attendance-dashboard/internal/domain/attendance"
	"github.com/smc-analytics/attendance-dashboard/internal/domain/auth"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/gas"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/sheet"
	"github.com/smc-analytics/attendance-dashboard/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Upstream data source errors
	var fetchErr *gas.FetchError
	if errors.As(err, &fetchErr) {
		BadGateway(w, "GAS_FETCH_ERROR", "Data source request failed", map[string]string{
			"status":  strconv.Itoa(fetchErr.StatusCode),
			"message": fetchErr.Body,
		})
		return
	}

	var missingTable *sheet.MissingTableError
	if errors.As(err, &missingTable) {
		details := map[string]string{"table": missingTable.Table}
		if missingTable.Found != "" {
			details["found"] = missingTable.Found
		}
		BadGateway(w, "MALFORMED_PAYLOAD", missingTable.Error(), details)
		return
	}

	switch {
	case errors.Is(err, gas.ErrInvalidJSON):
		BadGateway(w, "INVALID_JSON", "Data source returned invalid JSON", map[string]string{"message": err.Error()})
	case errors.Is(err, sheet.ErrMalformedPayload):
		BadGateway(w, "MALFORMED_PAYLOAD", err.Error(), nil)
	case errors.Is(err, attendance.ErrSourceUnavailable):
		ServiceUnavailable(w, "CONNECTION_ERROR", "Could not reach the data source")
	case errors.Is(err, attendance.ErrSnapshotNotLoaded):
		ServiceUnavailable(w, "DATA_NOT_LOADED", "Attendance data has not been loaded yet")
	case errors.Is(err, attendance.ErrUnknownDay):
		BadRequest(w, err.Error(), nil)

	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrPositionNotAllowed):
		Forbidden(w, "Position is not allowed to view the dashboard")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
