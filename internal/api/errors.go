package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/steveyegge/projctl/internal/command"
	"github.com/steveyegge/projctl/internal/tracker"
)

// Codes for failures that are not tracker errors
const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeUsage       = "USAGE"
	CodeRateLimited = "RATE_LIMITED"
	CodeBusy        = "BUSY"
)

// ErrorBody wraps the error object of a failed response
type ErrorBody struct {
	Error ErrorItem `json:"error"`
}

// ErrorItem carries a stable code and a human-readable message
type ErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// badRequest marks malformed request bodies and parameters
type badRequest struct {
	err error
}

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

// statusFor maps an error to its HTTP status and code
func statusFor(err error) (int, string) {
	var br *badRequest
	if errors.As(err, &br) {
		return http.StatusBadRequest, CodeBadRequest
	}
	var ue *command.UsageError
	if errors.As(err, &ue) {
		return http.StatusBadRequest, CodeUsage
	}

	code := tracker.Code(err)
	switch code {
	case tracker.CodeNotFound, tracker.CodeInvalidProject, tracker.CodeInvalidUser, tracker.CodeEmptyContainer:
		return http.StatusNotFound, code
	case tracker.CodeDuplicateName, tracker.CodeDuplicateExecutor:
		return http.StatusConflict, code
	case tracker.CodeCapacityExceeded:
		return http.StatusUnprocessableEntity, code
	case tracker.CodeNotAnEpic, tracker.CodeNotAssignable, tracker.CodeInvalidSubtaskKind, tracker.CodeInvalidCapacity, tracker.CodeInvalidArgument:
		return http.StatusBadRequest, code
	}
	return http.StatusInternalServerError, tracker.CodeInternal
}

// WriteError maps tracker errors to HTTP statuses and a JSON body
func WriteError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeErrorBody(w, status, code, msg)
}

func writeErrorBody(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: ErrorItem{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
