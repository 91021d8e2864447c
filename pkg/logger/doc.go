// Package logger builds slog loggers and provides attribute helpers so that
// log keys stay consistent across services.
//
// Request-scoped values such as the request id are injected by context
// extractors registered with WithContextExtractors; call sites only need to
// use the *Context logging methods.
package logger
