package handler

import (
	"encoding/json"
	"net/http"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

type jsonResponse struct {
	body Envelope
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.body.StatusCode)
	return json.NewEncoder(w).Encode(j.body)
}

type JSONOption func(*Envelope)

func WithStatus(code int) JSONOption {
	return func(e *Envelope) { e.StatusCode = code }
}

func WithMessage(msg string) JSONOption {
	return func(e *Envelope) { e.Message = msg }
}

// JSON renders data in a success envelope with status 200 unless overridden.
func JSON(data any, opts ...JSONOption) Response {
	body := Envelope{
		Status:     StatusSuccess,
		StatusCode: http.StatusOK,
		Message:    http.StatusText(http.StatusOK),
		Data:       data,
	}
	for _, opt := range opts {
		opt(&body)
	}
	if body.StatusCode >= http.StatusBadRequest {
		body.Status = StatusError
	}
	return jsonResponse{body: body}
}

// Created renders data with status 201.
func Created(data any, msg string) Response {
	return JSON(data, WithStatus(http.StatusCreated), WithMessage(msg))
}

// ErrorJSON renders err in an error envelope without logging it.
func ErrorJSON(err error) Response {
	info := Classify(err)
	return jsonResponse{body: Envelope{
		Status:     StatusError,
		StatusCode: info.StatusCode,
		Message:    info.Message,
		Data:       info.Data,
	}}
}

// WriteError renders err directly. Use it from middleware that has no
// ErrorHandler in scope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	_ = ErrorJSON(err).Render(w, r)
}
