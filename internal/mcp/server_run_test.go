package mcp

import (
	"context"
	"testing"
	"time"
)

// Under go test stdin is the null device, so stdio serving sees EOF and
// returns promptly. These tests only assert that Run comes back instead
// of wedging.

func TestServerRunStdioMode(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Mode = "stdio"
	server := testServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Logf("Run() stopped with: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run() did not return after stdin closed")
	}
}

func TestServerRunServerModeFallsBackToStdio(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Mode = "server"
	server := testServer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Logf("Run() stopped with: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Run() did not return after stdin closed")
	}
}

func TestServerRunRepeatedShutdowns(t *testing.T) {
	cfg := testConfig(t.TempDir())
	server := testServer(t, cfg)

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- server.Run(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Logf("Run() iteration %d stopped with: %v", i, err)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("Run() iteration %d did not return", i)
		}
		cancel()
	}
}
