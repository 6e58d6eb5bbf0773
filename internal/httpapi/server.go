package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assessml/internal/service"
	"assessml/pkg/types"
)

// Service defines the operations served under /ml.
type Service interface {
	ParseJD(ctx context.Context, req service.JDRequest) (types.Envelope, error)
	GenerateQuestions(ctx context.Context, req service.QuestionRequest) (types.Envelope, error)
	GradeAnswer(ctx context.Context, req service.GradeRequest) (types.Envelope, error)
	CheckPlagiarism(ctx context.Context, req service.PlagiarismRequest) (types.Envelope, error)
	AnalyzeAnomaly(ctx context.Context, req service.AnomalyRequest) (types.Envelope, error)
}

// Health reports registry readiness for /readyz and /status.
type Health interface {
	Ready() bool
	Status() types.StatusResponse
}

func NewMux(svc Service, health Health) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Route("/ml", func(r chi.Router) {
		r.Post("/parse-jd", handle("parse_jd", func(rid string, b types.ParseJDRequest) (service.JDRequest, error) {
			return service.NewJDRequest(rid, b.Text)
		}, svc.ParseJD))
		r.Post("/generate-questions", handle("generate_questions", func(rid string, b types.GenerateQuestionsRequest) (service.QuestionRequest, error) {
			return service.NewQuestionRequest(rid, b.Skill, b.Difficulty)
		}, svc.GenerateQuestions))
		r.Post("/grade-answer", handle("grade_answer", func(rid string, b types.GradeAnswerRequest) (service.GradeRequest, error) {
			return service.NewGradeRequest(rid, b.Answer, b.ModelAnswer)
		}, svc.GradeAnswer))
		r.Post("/check-plagiarism", handle("check_plagiarism", func(rid string, b types.CheckPlagiarismRequest) (service.PlagiarismRequest, error) {
			return service.NewPlagiarismRequest(rid, b.Texts, b.Code)
		}, svc.CheckPlagiarism))
		r.Post("/analyze-anomaly", handle("analyze_anomaly", func(rid string, b types.AnalyzeAnomalyRequest) (service.AnomalyRequest, error) {
			return service.NewAnomalyRequest(rid, b.Features)
		}, svc.AnalyzeAnomaly))
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, health.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if health.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// handle decodes a JSON body of type B, builds the validated service request
// and writes the resulting envelope. operation labels the ml metrics.
func handle[B, R any](operation string, build func(requestID string, body B) (R, error), call func(context.Context, R) (types.Envelope, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := middleware.GetReqID(r.Context())
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeErrorEnvelope(w, operation, http.StatusUnsupportedMediaType, rid, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var body B
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			// Oversized bodies also land here; report 400 to avoid leaking the limit
			writeErrorEnvelope(w, operation, http.StatusBadRequest, rid, "invalid JSON body")
			return
		}
		req, err := build(rid, body)
		if err != nil {
			writeErrorEnvelope(w, operation, statusFor(err), rid, err.Error())
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()
		start := time.Now()
		env, err := call(ctx, req)
		observeService(operation, statusOf(err), time.Since(start))
		if err != nil {
			// Client went away or server is shutting down; nobody to answer.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusFor(err)
			if status >= http.StatusInternalServerError {
				zlog.Warn().Str("request_id", rid).Str("path", r.URL.Path).Int("status", status).Err(err).Msg("ml request failed")
			}
			writeErrorEnvelope(w, operation, status, rid, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, env)
	}
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return statusFor(err)
}
