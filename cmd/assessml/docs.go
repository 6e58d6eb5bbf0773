package main

// General API documentation for swaggo. The served document lives in
// internal/httpapi/swagger.go (build tag swagger).
//
// @title           assessml API
// @version         1.0
// @description     Model-serving backend for hiring assessments: job description parsing, question generation, grading, plagiarism and anomaly checks.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
