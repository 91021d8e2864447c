package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edutrack/institute/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	capture := func(got *string) http.Handler {
		return requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*got = requestid.FromContext(r.Context())
		}))
	}

	t.Run("generates id when absent", func(t *testing.T) {
		t.Parallel()
		var got string
		rec := httptest.NewRecorder()
		capture(&got).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, got)
		assert.Equal(t, got, rec.Header().Get(requestid.Header))
	})

	t.Run("keeps valid incoming id", func(t *testing.T) {
		t.Parallel()
		var got string
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestid.Header, "req_123-abc")
		capture(&got).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "req_123-abc", got)
	})

	t.Run("replaces malformed id", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"<script>", "has space", strings.Repeat("a", 129)} {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(requestid.Header, bad)
			capture(&got).ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, bad, got)
			assert.NotEmpty(t, got)
		}
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(requestid.WithContext(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}
