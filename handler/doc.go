// Package handler adapts typed request handlers to net/http.
//
// A handler receives a bound request value and returns a Response. Binding
// failures and errors returned through Error are passed to a single
// ErrorHandler which renders the JSON envelope used by every endpoint:
//
//	{"status":"error","status_code":401,"message":"Invalid OTP","data":null}
//
// Typical use:
//
//	mux.Post("/login", handler.Wrap(h.login,
//		handler.WithBinders[handler.Context, loginRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, loginRequest](errHandler),
//	))
package handler
