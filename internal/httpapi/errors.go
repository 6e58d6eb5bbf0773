package httpapi

import (
	"encoding/json"
	"net/http"

	"assessml/internal/registry"
	"assessml/internal/service"
	"assessml/pkg/types"
)

// statusFor maps service and registry errors to HTTP status codes.
// Unavailable models map to 503 even when wrapped in an InferenceFailure.
func statusFor(err error) int {
	switch {
	case service.IsInvalidRequest(err):
		return http.StatusBadRequest
	case registry.IsNotReady(err), registry.IsCapabilityUnavailable(err):
		return http.StatusServiceUnavailable
	case service.IsInferenceFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorKind is the metrics label for a mapped error.
func errorKind(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusServiceUnavailable:
		return "unavailable"
	case http.StatusBadGateway:
		return "inference_failure"
	case http.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	default:
		return "internal"
	}
}

// writeJSONError writes a consistent JSON error payload for non-ml routes.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// writeErrorEnvelope writes an error envelope for /ml routes.
func writeErrorEnvelope(w http.ResponseWriter, operation string, status int, requestID, msg string) {
	mlErrorsTotal.WithLabelValues(operation, errorKind(status)).Inc()
	writeJSON(w, status, types.Envelope{
		Status:    types.StatusError,
		RequestID: requestID,
		Explain:   msg,
		Error:     msg,
		Code:      status,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
