package mcp

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Fuabioo/hhdt/internal/config"
	"github.com/Fuabioo/hhdt/internal/source"
)

func TestNewServer(t *testing.T) {
	srv, err := NewServer(nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	if srv == nil {
		t.Fatal("expected non-nil server")
	}
	if srv.mcp == nil {
		t.Error("expected MCP server to be initialized")
	}
	if srv.cfg == nil {
		t.Error("expected config to be initialized")
	}
	if srv.metrics == nil {
		t.Error("expected metrics to be initialized")
	}
	if srv.tracer == nil {
		t.Error("expected tracer to be initialized")
	}
}

func TestNewServer_WithConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DefaultSource = source.HoloError

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	if srv.cfg.DefaultSource != source.HoloError {
		t.Errorf("expected configured default source, got %q", srv.cfg.DefaultSource)
	}
}

func TestServer_ServeStopsOnEOF(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Metrics.Addr = "127.0.0.1:0"

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.serve(ctx, strings.NewReader(""), &bytes.Buffer{})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error: %v", err)
		}
	case <-ctx.Done():
		t.Fatal("serve() did not return after stdin closed")
	}
}
