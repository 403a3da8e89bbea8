package cloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResolve_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("metadata request method = %s, want GET", r.Method)
		}
		w.Write([]byte("346721834\n"))
	}))
	defer srv.Close()

	r := NewIdentityResolver(srv.URL)
	id, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}
	if id != "346721834" {
		t.Errorf("Resolve() = %q, want trimmed droplet id", id)
	}
}

func TestResolve_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewIdentityResolver(srv.URL)
	if _, err := r.Resolve(context.Background()); err == nil {
		t.Error("Resolve() expected error for 404, got nil")
	}
}

func TestResolve_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("   \n"))
	}))
	defer srv.Close()

	r := NewIdentityResolver(srv.URL)
	if _, err := r.Resolve(context.Background()); err == nil {
		t.Error("Resolve() expected error for empty body, got nil")
	}
}

func TestResolve_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately unreachable

	r := NewIdentityResolver(srv.URL)
	if _, err := r.Resolve(context.Background()); err == nil {
		t.Error("Resolve() expected transport error, got nil")
	}
}

func TestNewIdentityResolver_DefaultURL(t *testing.T) {
	r := NewIdentityResolver("")
	if r.url != DefaultMetadataURL {
		t.Errorf("url = %q, want %q", r.url, DefaultMetadataURL)
	}
	if !strings.HasPrefix(r.url, "http://169.254.") {
		t.Errorf("default metadata URL %q is not link-local", r.url)
	}
}
