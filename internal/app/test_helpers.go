package app

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/cicrender/internal/cohort"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// StaticSource serves a fixed set of configurations.
type StaticSource struct {
	Configs []*cohort.Configuration
	Err     error
	Closed  bool
}

func (s *StaticSource) Configurations(ctx context.Context) ([]*cohort.Configuration, error) {
	return s.Configs, s.Err
}

// SetupAppTest creates a new app instance for system testing. When src is
// non-nil it replaces the configured source.
func SetupAppTest(t *testing.T, cfg *Config, src *StaticSource) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(logBuffer, cfg)
	if src != nil {
		testApp.openSource = func(context.Context) (cohort.Source, func() error, error) {
			return src, func() error { src.Closed = true; return nil }, nil
		}
	}

	t.Cleanup(func() {
		if os.Getenv("CICRENDER_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
