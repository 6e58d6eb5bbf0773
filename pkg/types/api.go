package types

// Envelope statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ParseJDRequest is the payload for POST /ml/parse-jd.
type ParseJDRequest struct {
	// Job description text.
	// example: Senior backend engineer with Go and PostgreSQL experience at Acme.
	Text string `json:"text" example:"Senior backend engineer with Go and PostgreSQL experience at Acme."`
}

// GenerateQuestionsRequest is the payload for POST /ml/generate-questions.
type GenerateQuestionsRequest struct {
	// example: Python
	Skill string `json:"skill" example:"Python"`
	// example: easy
	Difficulty string `json:"difficulty" example:"easy"`
}

// GradeAnswerRequest is the payload for POST /ml/grade-answer.
type GradeAnswerRequest struct {
	// Candidate answer.
	Answer string `json:"answer" example:"A goroutine is a lightweight thread managed by the Go runtime."`
	// Reference answer to grade against.
	ModelAnswer string `json:"model_answer" example:"Goroutines are lightweight threads scheduled by the Go runtime."`
}

// CheckPlagiarismRequest is the payload for POST /ml/check-plagiarism.
type CheckPlagiarismRequest struct {
	// Two or more texts to compare pairwise.
	Texts []string `json:"texts"`
	// Compare with the code embedder instead of the text embedder.
	// example: false
	Code bool `json:"code,omitempty" example:"false"`
}

// AnalyzeAnomalyRequest is the payload for POST /ml/analyze-anomaly.
type AnalyzeAnomalyRequest struct {
	// Feature vector with the baseline's dimensionality.
	Features []float64 `json:"features"`
}

// Envelope wraps every result returned by the ml routes.
type Envelope struct {
	// ok or error.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Request identifier echoed back to the caller.
	RequestID string `json:"request_id,omitempty"`
	// Capability-specific result.
	Payload any `json:"payload,omitempty"`
	// Self-reported certainty in [0,1].
	// example: 0.9
	Confidence float64 `json:"confidence" example:"0.9"`
	// Fixed description of the method used, or the error message.
	Explain string `json:"explain"`
	// Error message (error envelopes only).
	Error string `json:"error,omitempty"`
	// HTTP status code (error envelopes only).
	Code int `json:"code,omitempty"`
}

// ErrorResponse is a consistent JSON error payload for non-ml routes.
type ErrorResponse struct {
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// example: 400
	Code int `json:"code" example:"400"`
}

// CapabilityStatus summarizes one registry capability for /status.
type CapabilityStatus struct {
	// example: text-embedder
	Capability string `json:"capability" example:"text-embedder"`
	// example: true
	Loaded bool `json:"loaded" example:"true"`
	// Calls are serialized through a single slot.
	Serialized bool `json:"serialized"`
	// Load duration in milliseconds.
	// example: 1200
	LoadMillis int64 `json:"load_ms" example:"1200"`
	// Calls currently running or waiting for the slot.
	Inflight int64 `json:"inflight"`
	// Load error, if the capability is unavailable.
	Error string `json:"error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Registry lifecycle state: uninitialized, loading, ready, degraded.
	// example: ready
	State        string             `json:"state" example:"ready"`
	Capabilities []CapabilityStatus `json:"capabilities"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
