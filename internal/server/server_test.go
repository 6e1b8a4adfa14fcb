package server

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":               ":8080",
		"9090":           ":9090",
		":9090":          ":9090",
		"127.0.0.1:9090": "127.0.0.1:9090",
		" 7000 ":         ":7000",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRun_ShutdownIsNotAnError(t *testing.T) {
	s := New("127.0.0.1:0", http.NotFoundHandler())

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}
