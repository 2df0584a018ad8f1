package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"printer-service/internal/utils"
)

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		seen = c.GetString(utils.RequestIDKey)
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{"generated", "", false},
		{"reused", "req-42", true},
		{"too long", strings.Repeat("x", 129), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("header %q, context %q", got, seen)
			}
			if (got == tt.header) != tt.reuse {
				t.Errorf("request id = %q, header %q", got, tt.header)
			}
		})
	}
}
