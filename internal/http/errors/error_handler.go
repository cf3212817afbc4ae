package errors

import (
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"net/http"
	"optisched/internal/http/validation"
	"strings"
)

// ErrorHandler answers failed requests of one endpoint with {"error": "..."}.
// Server faults are logged as errors and hide their cause from the client;
// client faults are logged at debug level and returned in full.
type ErrorHandler struct {
	endpoint string
}

type errorBody struct {
	Error string `json:"error"`
}

func NewErrorHandler(endpoint string) *ErrorHandler {
	return &ErrorHandler{endpoint}
}

func (eh *ErrorHandler) WriteAndLogError(
	w http.ResponseWriter,
	msg string,
	err error,
	statusCode int,
	fields log.Fields,
) {
	detailed := fmt.Errorf("%s: %w", msg, err)
	eh.logFailure(detailed, statusCode, fields)
	if statusCode >= http.StatusInternalServerError {
		eh.respond(w, msg, statusCode)
		return
	}
	eh.respond(w, detailed.Error(), statusCode)
}

func (eh *ErrorHandler) WriteAndLogErrorMsg(
	w http.ResponseWriter,
	msg string,
	statusCode int,
	fields log.Fields,
) {
	eh.logFailure(msg, statusCode, fields)
	eh.respond(w, msg, statusCode)
}

// WriteAndLogValidationErrors reports every failed field, addressed by its
// path inside the request body, e.g. "jobs[0][1].duration".
func (eh *ErrorHandler) WriteAndLogValidationErrors(
	w http.ResponseWriter,
	err validator.ValidationErrors,
	statusCode int,
	fields log.Fields,
) {
	reasons := make([]string, 0, len(err))
	for _, fe := range err {
		path := fe.Namespace()
		if _, rest, found := strings.Cut(path, "."); found {
			path = rest
		}
		reason := validation.Describe(fe)
		if path != fe.Field() {
			reason = path + ": " + reason
		}
		reasons = append(reasons, reason)
	}
	eh.WriteAndLogErrorMsg(w, "validation error: "+strings.Join(reasons, "; "), statusCode, fields)
}

func (eh *ErrorHandler) logFailure(failure interface{}, statusCode int, fields log.Fields) {
	entry := log.WithFields(fields).WithFields(log.Fields{
		"endpoint": eh.endpoint,
		"status":   statusCode,
	})
	if statusCode >= http.StatusInternalServerError {
		entry.Error(failure)
		return
	}
	entry.Debug(failure)
}

func (eh *ErrorHandler) respond(w http.ResponseWriter, msg string, statusCode int) {
	body, err := json.Marshal(errorBody{msg})
	if err != nil {
		http.Error(w, msg, statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(body)
}
