package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"mime"
	"net/http"
	herrors "optisched/internal/http/errors"
	"optisched/internal/http/validation"
	"optisched/internal/model"
	"optisched/internal/scheduler"
)

const maxRequestBytes = 1 << 20

type scheduleServer struct {
	validate *validator.Validate
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	js, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "error forming response data", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}

var (
	selectIntervalsErrorHandler = herrors.NewErrorHandler("SelectIntervals")
	scheduleJobsErrorHandler    = herrors.NewErrorHandler("ScheduleJobs")
	routeErrorHandler           = herrors.NewErrorHandler("Router")
)

type requestInterval struct {
	Start *int `json:"start" validate:"required"`
	End   *int `json:"end" validate:"required,afterstart"`
}

type requestIntervals struct {
	Intervals []requestInterval `json:"intervals" validate:"required,dive"`
}

type requestOperation struct {
	Machine  *int `json:"machine" validate:"required,gte=0"`
	Duration *int `json:"duration" validate:"required,gt=0"`
}

type requestJobShop struct {
	Jobs [][]requestOperation `json:"jobs" validate:"required,dive,dive"`
}

type responseIntervals struct {
	Selected []model.Interval `json:"selected"`
	Count    int              `json:"count"`
}

type responseMachine struct {
	Machine    model.MachineId   `json:"machine"`
	Operations []model.Operation `json:"operations"`
}

type responseSchedule struct {
	Makespan int                `json:"makespan"`
	Machines []responseMachine  `json:"machines"`
	Jobs     []model.JobSummary `json:"jobs"`
}

// decodeRequest reads a JSON body into v and validates it. It writes the error
// response itself and returns false when the request cannot be served.
func (ss *scheduleServer) decodeRequest(w http.ResponseWriter, req *http.Request, eh *herrors.ErrorHandler, v any) bool {
	requestFields := log.Fields{"request id": RequestID(req.Context())}

	contentType := req.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		eh.WriteAndLogError(
			w,
			"failed to parse media type",
			err, http.StatusUnsupportedMediaType,
			log.Fields{"header": contentType, "request id": RequestID(req.Context())},
		)
		return false
	}
	if mediaType != "application/json" {
		eh.WriteAndLogError(
			w,
			"expect application/json Content-Type",
			errors.New("Content-Type error"),
			http.StatusUnsupportedMediaType,
			log.Fields{"media type": mediaType, "request id": RequestID(req.Context())},
		)
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err = dec.Decode(v); err != nil {
		eh.WriteAndLogError(
			w,
			"failed to parse request body",
			err,
			http.StatusBadRequest,
			requestFields,
		)
		return false
	}

	err = ss.validate.StructCtx(req.Context(), v)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			eh.WriteAndLogValidationErrors(w, validationErrors, http.StatusUnprocessableEntity, requestFields)
		} else {
			eh.WriteAndLogError(w, "failed to validate request", err, http.StatusInternalServerError, requestFields)
		}
		return false
	}
	return true
}

func schedulingStatus(err error) int {
	if errors.Is(err, model.ErrInvalidInput) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (ss *scheduleServer) selectIntervalsHandler(w http.ResponseWriter, req *http.Request) {
	ri := requestIntervals{}
	if !ss.decodeRequest(w, req, selectIntervalsErrorHandler, &ri) {
		return
	}

	intervals := make([]model.Interval, 0, len(ri.Intervals))
	for _, interval := range ri.Intervals {
		intervals = append(intervals, model.Interval{Start: *interval.Start, End: *interval.End})
	}
	selected, err := scheduler.SelectIntervals(intervals)
	if err != nil {
		selectIntervalsErrorHandler.WriteAndLogError(
			w,
			"failed to select intervals",
			err,
			schedulingStatus(err),
			log.Fields{"request id": RequestID(req.Context())},
		)
		return
	}
	log.WithFields(log.Fields{
		"request id": RequestID(req.Context()),
		"intervals":  len(intervals),
		"selected":   len(selected),
	}).Debug("Selected intervals")
	writeJSON(w, responseIntervals{selected, len(selected)})
}

func (ss *scheduleServer) scheduleJobsHandler(w http.ResponseWriter, req *http.Request) {
	rj := requestJobShop{}
	if !ss.decodeRequest(w, req, scheduleJobsErrorHandler, &rj) {
		return
	}

	jobs := make([]model.Job, 0, len(rj.Jobs))
	for _, steps := range rj.Jobs {
		job := make(model.Job, 0, len(steps))
		for _, step := range steps {
			job = append(job, model.OperationRequest{Machine: model.MachineId(*step.Machine), Duration: *step.Duration})
		}
		jobs = append(jobs, job)
	}
	schedule, err := scheduler.ScheduleJobs(jobs)
	if err != nil {
		scheduleJobsErrorHandler.WriteAndLogError(
			w,
			"failed to schedule jobs",
			err,
			schedulingStatus(err),
			log.Fields{"request id": RequestID(req.Context())},
		)
		return
	}

	response := responseSchedule{
		Makespan: schedule.Makespan,
		Machines: make([]responseMachine, 0, len(schedule.Machines)),
		Jobs:     schedule.JobSummaries(),
	}
	for _, id := range schedule.MachineIDs() {
		response.Machines = append(response.Machines, responseMachine{id, schedule.Machines[id]})
	}
	log.WithFields(log.Fields{
		"request id": RequestID(req.Context()),
		"jobs":       len(jobs),
		"makespan":   schedule.Makespan,
	}).Debug("Scheduled jobs")
	writeJSON(w, response)
}

func notFoundHandler(w http.ResponseWriter, req *http.Request) {
	routeErrorHandler.WriteAndLogErrorMsg(
		w,
		fmt.Sprintf("no route for %s", req.URL.Path),
		http.StatusNotFound,
		log.Fields{"request id": RequestID(req.Context())},
	)
}

func methodNotAllowedHandler(w http.ResponseWriter, req *http.Request) {
	routeErrorHandler.WriteAndLogErrorMsg(
		w,
		fmt.Sprintf("method %s is not allowed for %s", req.Method, req.URL.Path),
		http.StatusMethodNotAllowed,
		log.Fields{"request id": RequestID(req.Context())},
	)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type ctxKey string

const requestIDKey ctxKey = "request id"

func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{w, http.StatusOK}
		next.ServeHTTP(sw, r)
		log.WithFields(log.Fields{
			"request id": RequestID(r.Context()),
			"status":     sw.status,
		}).Infof("%s %s", r.Method, r.RequestURI)
	})
}

func NewScheduleServer(addr string) (*http.Server, error) {
	server := scheduleServer{validator.New()}
	if err := validation.RegisterScheduleValidation(server.validate); err != nil {
		return nil, fmt.Errorf("error registering schedule validation: %w", err)
	}

	router := mux.NewRouter()
	router.StrictSlash(true)
	router.HandleFunc("/api/v1/intervals/", server.selectIntervalsHandler).Methods("POST")
	router.HandleFunc("/api/v1/jobshop/", server.scheduleJobsHandler).Methods("POST")
	router.HandleFunc("/api/v1/health/", healthHandler).Methods("GET")
	router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)
	// router.Use middleware does not run for unmatched requests.
	return &http.Server{Addr: addr, Handler: requestIDMiddleware(loggingMiddleware(router))}, nil
}
