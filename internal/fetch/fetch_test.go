package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("User-Agent = %q, want %q", ua, userAgent)
		}
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c, err := New(5*time.Second, "")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	body, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(body) != "hello" {
		t.Fatalf("body = %q, want %q", body, "hello")
	}
}

func TestGetWrapsNon200AsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(5*time.Second, "")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	_, err = c.Get(context.Background(), srv.URL)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.URL != srv.URL {
		t.Fatalf("TransportError.URL = %q, want %q", te.URL, srv.URL)
	}
}

func TestGetTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := New(50*time.Millisecond, "")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	_, err = c.Get(context.Background(), srv.URL)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError on timeout, got %v", err)
	}
}

func TestNewRejectsBadProxyURL(t *testing.T) {
	if _, err := New(time.Second, "://bad"); err == nil {
		t.Fatalf("expected error for malformed proxy url")
	}
}
