package fakeapi

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// Start serves a new Server for the duration of the test and returns it with
// the API base URL (ending in /api).
func Start(tb testing.TB, opts ...Option) (*Server, string) {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	s := New(opts...)
	ts := httptest.NewServer(s.Handler())
	tb.Cleanup(ts.Close)
	return s, ts.URL + "/api"
}
