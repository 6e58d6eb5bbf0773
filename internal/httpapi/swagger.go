//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"
	httpSwagger "github.com/swaggo/http-swagger"
)

// swaggerInfo holds the API document served at /swagger/doc.json.
var swaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "assessml API",
	Description:      "Model-serving backend for hiring assessments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}

// MountSwagger serves the swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

// SwaggerEnabled reports whether the swagger UI is compiled in.
func SwaggerEnabled() bool { return true }

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ml/parse-jd": {
            "post": {
                "summary": "Parse a job description",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.ParseJDRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "502": {"description": "Inference failure", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "503": {"description": "Model unavailable", "schema": {"$ref": "#/definitions/types.Envelope"}}
                }
            }
        },
        "/ml/generate-questions": {
            "post": {
                "summary": "Generate three multiple-choice questions",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.GenerateQuestionsRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "502": {"description": "Inference failure", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "503": {"description": "Model unavailable", "schema": {"$ref": "#/definitions/types.Envelope"}}
                }
            }
        },
        "/ml/grade-answer": {
            "post": {
                "summary": "Grade an answer against a reference answer",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.GradeAnswerRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "502": {"description": "Inference failure", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "503": {"description": "Model unavailable", "schema": {"$ref": "#/definitions/types.Envelope"}}
                }
            }
        },
        "/ml/check-plagiarism": {
            "post": {
                "summary": "Find the most similar pair of texts",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.CheckPlagiarismRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "502": {"description": "Inference failure", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "503": {"description": "Model unavailable", "schema": {"$ref": "#/definitions/types.Envelope"}}
                }
            }
        },
        "/ml/analyze-anomaly": {
            "post": {
                "summary": "Score a behavioral feature vector",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/types.AnalyzeAnomalyRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "502": {"description": "Inference failure", "schema": {"$ref": "#/definitions/types.Envelope"}},
                    "503": {"description": "Model unavailable", "schema": {"$ref": "#/definitions/types.Envelope"}}
                }
            }
        },
        "/status": {
            "get": {
                "summary": "Registry status",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}
            }
        },
        "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
        "/readyz": {"get": {"summary": "Readiness", "responses": {"200": {"description": "ready"}, "503": {"description": "loading"}}}}
    },
    "definitions": {
        "types.ParseJDRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "types.GenerateQuestionsRequest": {"type": "object", "properties": {"skill": {"type": "string"}, "difficulty": {"type": "string"}}},
        "types.GradeAnswerRequest": {"type": "object", "properties": {"answer": {"type": "string"}, "model_answer": {"type": "string"}}},
        "types.CheckPlagiarismRequest": {"type": "object", "properties": {"texts": {"type": "array", "items": {"type": "string"}}, "code": {"type": "boolean"}}},
        "types.AnalyzeAnomalyRequest": {"type": "object", "properties": {"features": {"type": "array", "items": {"type": "number"}}}},
        "types.Envelope": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "request_id": {"type": "string"},
                "payload": {"type": "object"},
                "confidence": {"type": "number"},
                "explain": {"type": "string"},
                "error": {"type": "string"},
                "code": {"type": "integer"}
            }
        },
        "types.CapabilityStatus": {
            "type": "object",
            "properties": {
                "capability": {"type": "string"},
                "loaded": {"type": "boolean"},
                "serialized": {"type": "boolean"},
                "load_ms": {"type": "integer"},
                "inflight": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "capabilities": {"type": "array", "items": {"$ref": "#/definitions/types.CapabilityStatus"}},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        }
    }
}`
