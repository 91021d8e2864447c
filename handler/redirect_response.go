package handler

import "net/http"

type redirectResponse struct {
	url  string
	code int
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect responds 302 Found, which OAuth consent flows expect.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusFound}
}
