// Package service implements the assessment operations on top of the model
// registry: job description parsing, question generation, answer grading,
// plagiarism checks and behavioral anomaly scoring.
//
// Each operation validates its request before resolving any model, returns a
// types.Envelope on success, and fails with *InvalidRequestError or
// *InferenceFailure. Services hold no mutable state and are safe for
// concurrent use.
package service
