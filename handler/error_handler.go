package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/edutrack/institute/core"
	"github.com/edutrack/institute/pkg/binder"
	"github.com/edutrack/institute/pkg/logger"
	"github.com/edutrack/institute/pkg/requestid"
	"github.com/edutrack/institute/pkg/validator"
)

// ErrorInfo is the rendered form of an error.
type ErrorInfo struct {
	StatusCode int
	Message    string
	Data       any
	LogLevel   slog.Level
}

// Classify maps err to a status and a client-safe message. Errors that carry
// no core.AppError become a generic 500 so internals never leak.
func Classify(err error) ErrorInfo {
	if verrs, ok := validator.Extract(err); ok && len(verrs) > 0 {
		return ErrorInfo{
			StatusCode: http.StatusBadRequest,
			Message:    verrs[0].Field + " " + verrs[0].Message,
			Data:       verrs.ByField(),
			LogLevel:   slog.LevelInfo,
		}
	}

	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return ErrorInfo{StatusCode: http.StatusUnsupportedMediaType, Message: "Unsupported media type", LogLevel: slog.LevelInfo}
	case errors.Is(err, binder.ErrFailedToParseJSON):
		return ErrorInfo{StatusCode: http.StatusBadRequest, Message: "Invalid request body", LogLevel: slog.LevelInfo}
	}

	ae, ok := core.As(err)
	if !ok {
		ae = core.ErrInternal
	}
	level := slog.LevelWarn
	if ae.Code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	return ErrorInfo{StatusCode: ae.Code, Message: ae.Message, LogLevel: level}
}

type ErrorHandlerOption func(*errorHandlerConfig)

type errorHandlerConfig struct {
	report func(context.Context, error)
}

// WithReporter forwards 5xx errors to an external tracker.
func WithReporter(fn func(context.Context, error)) ErrorHandlerOption {
	return func(c *errorHandlerConfig) { c.report = fn }
}

// NewErrorHandler logs err with request metadata and renders the envelope.
func NewErrorHandler(log *slog.Logger, opts ...ErrorHandlerOption) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	cfg := &errorHandlerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := Classify(err)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)
		if info.StatusCode >= http.StatusInternalServerError && cfg.report != nil {
			cfg.report(r.Context(), err)
		}

		_ = ErrorJSON(err).Render(ctx.ResponseWriter(), r)
	}
}
