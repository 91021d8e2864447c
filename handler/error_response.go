package handler

import "net/http"

type errorResponse struct {
	err error
}

// Render writes nothing so Wrap hands err to the configured ErrorHandler.
func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error routes err through the ErrorHandler, which logs and renders it.
func Error(err error) Response {
	if err == nil {
		err = ErrNilResponse
	}
	return errorResponse{err: err}
}
