package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSecurity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	config := SecurityConfig{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"https://admin.example.com",
		},
	}

	tests := []struct {
		name       string
		method     string
		origin     string
		referer    string
		wantStatus int
	}{
		// GET requests pass without validation
		{
			name:       "GET request passes without headers",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "HEAD request passes without headers",
			method:     http.MethodHead,
			wantStatus: http.StatusOK,
		},
		// Preflight is answered directly
		{
			name:       "OPTIONS preflight answered",
			method:     http.MethodOptions,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusNoContent,
		},
		// POST with Origin
		{
			name:       "POST with allowed origin passes",
			method:     http.MethodPost,
			origin:     "http://localhost:3000",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with allowed origin (trailing slash) passes",
			method:     http.MethodPost,
			origin:     "http://localhost:3000/",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with allowed origin (case insensitive) passes",
			method:     http.MethodPost,
			origin:     "HTTP://LOCALHOST:3000",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with unlisted origin blocked",
			method:     http.MethodPost,
			origin:     "https://evil.com",
			wantStatus: http.StatusForbidden,
		},
		// POST with Referer fallback
		{
			name:       "POST with allowed referer passes",
			method:     http.MethodPost,
			referer:    "https://admin.example.com/dashboard",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST with unlisted referer blocked",
			method:     http.MethodPost,
			referer:    "https://evil.com/form",
			wantStatus: http.StatusForbidden,
		},
		// Direct API calls carry neither header and pass
		{
			name:       "POST without browser headers passes",
			method:     http.MethodPost,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Security(config))
			router.Handle(tt.method, "/resource", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/resource", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestSecurity_CORSHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Security(SecurityConfig{AllowedOrigins: []string{"http://localhost:3000"}}))
	router.GET("/resource", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q", got)
	}
}

func TestSecurity_NoCORSHeadersForUnlistedOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Security(SecurityConfig{AllowedOrigins: []string{"http://localhost:3000"}}))
	router.GET("/resource", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Origin", "https://evil.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin should be empty for unlisted origin, got %q", got)
	}
}

func TestExtractOrigin(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://admin.example.com/dashboard", "https://admin.example.com"},
		{"http://localhost:3000/page?q=1", "http://localhost:3000"},
		{"://bad url", ""},
	}

	for _, tt := range tests {
		if got := extractOrigin(tt.rawURL); got != tt.want {
			t.Errorf("extractOrigin(%q) = %q, want %q", tt.rawURL, got, tt.want)
		}
	}
}
