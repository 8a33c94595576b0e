// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing API responses
// and maps pipeline errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"financas/internal/amqp"
	"financas/internal/document"
	"financas/internal/services"
)

// ResponseBuilder provides a fluent API for building API responses.
type ResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.headers["Content-Type"] = "application/json; charset=utf-8"
	b.body = append(body, '\n')
	return b
}

// Attachment sets a downloadable body under the given file name.
func (b *ResponseBuilder) Attachment(contentType, fileName string, body []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	b.headers["Content-Length"] = strconv.Itoa(len(body))
	b.body = body
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(ErrorBody{Error: message})
}

// StatusFor maps a pipeline error to a status code and a message safe to
// show the caller. Store and render internals never leak.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, document.ErrInvalidOptions),
		errors.Is(err, errBodyTooLarge),
		errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "transaction store unavailable, try again later"
	case errors.Is(err, services.ErrExportsDisabled):
		return http.StatusServiceUnavailable, "asynchronous exports are not enabled"
	case errors.Is(err, amqp.ErrCircuitOpen):
		return http.StatusServiceUnavailable, "export queue unavailable, try again later"
	case errors.Is(err, document.ErrMalformedSection):
		return http.StatusUnprocessableEntity, "report contains records that cannot be rendered"
	default:
		return http.StatusInternalServerError, "failed to produce report"
	}
}
