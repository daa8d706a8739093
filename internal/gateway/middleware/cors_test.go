package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestCORSAllowAllReflectsOrigin(t *testing.T) {
	h := CORS(NewOriginPolicy(nil))(okHandler())
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Origin", "http://ui.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://ui.test" {
		t.Fatalf("allow origin = %q", got)
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected request to reach handler, got %d", rec.Code)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	h := CORS(NewOriginPolicy([]string{"http://ui.test"}))(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://ui.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Fatalf("expected allow headers on preflight")
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	h := CORS(NewOriginPolicy([]string{"http://ui.test"}))(okHandler())

	pre := httptest.NewRequest(http.MethodOptions, "/x", nil)
	pre.Header.Set("Origin", "http://evil.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, pre)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("preflight status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestOriginPolicy(t *testing.T) {
	open := NewOriginPolicy([]string{" ", ""})
	if !open.AllowAll() || !open.Allows("http://any.test") {
		t.Fatalf("blank list should allow everything")
	}
	if !NewOriginPolicy([]string{"http://a.test", "*"}).Allows("http://b.test") {
		t.Fatalf("wildcard should allow everything")
	}
	p := NewOriginPolicy([]string{"http://a.test"})
	if p.AllowAll() {
		t.Fatalf("explicit list should not allow all")
	}
	if !p.Allows("http://a.test") || !p.Allows("") {
		t.Fatalf("listed origin and non-browser requests must pass")
	}
	if p.Allows("http://b.test") {
		t.Fatalf("unlisted origin must be rejected")
	}
}
