package handler

import "net/http"

// withHeaders runs fn before the wrapped response writes its status line.
type withHeaders struct {
	next Response
	fn   func(w http.ResponseWriter)
}

func (r withHeaders) Render(w http.ResponseWriter, req *http.Request) error {
	r.fn(w)
	return r.next.Render(w, req)
}

// Before lets a handler set cookies or headers on an otherwise plain response.
func Before(resp Response, fn func(w http.ResponseWriter)) Response {
	if fn == nil {
		return resp
	}
	return withHeaders{next: resp, fn: fn}
}
