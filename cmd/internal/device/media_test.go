package device

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMediaFetcherFetch(t *testing.T) {
	t.Parallel()

	payload := []byte("fake image bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	m, err := NewMediaFetcher(0).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if m.MimeType != "image/png" {
		t.Fatalf("MimeType = %q", m.MimeType)
	}
	if m.Filename != "media_file" {
		t.Fatalf("Filename = %q", m.Filename)
	}
	got, err := base64.StdEncoding.DecodeString(m.Data)
	if err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("data round trip: got=%q", got)
	}
}

func TestMediaFetcherStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewMediaFetcher(0).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrMediaFetch) {
		t.Fatalf("err = %v, want ErrMediaFetch", err)
	}
}

func TestMediaFetcherUnreachable(t *testing.T) {
	t.Parallel()

	_, err := NewMediaFetcher(0).Fetch(context.Background(), "http://127.0.0.1:1/nope")
	if !errors.Is(err, ErrMediaFetch) {
		t.Fatalf("err = %v, want ErrMediaFetch", err)
	}
}
