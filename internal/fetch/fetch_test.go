package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mirrorkit/librepo/internal/cache"
	"github.com/mirrorkit/librepo/internal/config"
)

func TestFetchLocalFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "mirrorlist.txt")
	if err := os.WriteFile(p, []byte("http://example.com/\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	f := New(c, nil)

	src := &config.MirrorSource{Kind: config.SourceFlat, URL: "file://" + p}
	data, err := f.Fetch(context.Background(), "test-source", src)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "http://example.com/\n" {
		t.Errorf("data = %q", data)
	}

	cached, ok, err := f.Cached("test-source")
	if err != nil {
		t.Fatalf("Cached() error = %v", err)
	}
	if !ok || string(cached) != string(data) {
		t.Errorf("Cached() = %q, %v, want %q, true", cached, ok, data)
	}
}

func TestFetchHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ftp://mirror.example.com/\n"))
	}))
	defer srv.Close()

	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	f := New(c, srv.Client())

	src := &config.MirrorSource{Kind: config.SourceFlat, URL: srv.URL}
	data, err := f.Fetch(context.Background(), "http-source", src)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "ftp://mirror.example.com/\n" {
		t.Errorf("data = %q", data)
	}
}

func TestFetchHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	f := New(c, srv.Client())

	src := &config.MirrorSource{Kind: config.SourceFlat, URL: srv.URL}
	if _, err := f.Fetch(context.Background(), "bad-source", src); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
