package credential

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tokenPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "token")
}

func TestNew_MissingFileMeansLoggedOut(t *testing.T) {
	s, err := New(tokenPath(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Token(); got != "" {
		t.Errorf("Token: got %q, want empty", got)
	}
}

func TestNew_ReadsExistingToken(t *testing.T) {
	path := tokenPath(t)
	if err := os.WriteFile(path, []byte("abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Token(); got != "abc123" {
		t.Errorf("Token: got %q, want abc123", got)
	}
}

func TestSetAndClear(t *testing.T) {
	s, err := New(tokenPath(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Set("tok-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Token(); got != "tok-1" {
		t.Errorf("Token after Set: got %q, want tok-1", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got := s.Token(); got != "" {
		t.Errorf("Token after Clear: got %q, want empty", got)
	}

	// Clearing twice must be a no-op.
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestWatch_SeesExternalWriteAndRemove(t *testing.T) {
	path := tokenPath(t)
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	changes := make(chan string, 4)
	go func() {
		_ = s.Watch(ctx, func(token string) { changes <- token })
	}()

	// Give the watcher time to register before the first write.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("fresh-token"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-changes:
		if got != "fresh-token" {
			t.Errorf("onChange: got %q, want fresh-token", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for write notification")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-changes:
		if got != "" {
			t.Errorf("onChange after remove: got %q, want empty", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remove notification")
	}
}
