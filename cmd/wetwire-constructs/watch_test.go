package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestNewWatchCmd(t *testing.T) {
	cmd := newWatchCmd(&rootOptions{})

	if cmd.Use != "watch <stacks...>" {
		t.Errorf("Use = %q, want 'watch <stacks...>'", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	for _, name := range []string{"debounce", "format", "dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s flag", name)
		}
	}
}

func TestDebounceDefault(t *testing.T) {
	cmd := newWatchCmd(&rootOptions{})

	flag := cmd.Flags().Lookup("debounce")
	if flag == nil {
		t.Fatal("missing --debounce flag")
	}

	if flag.DefValue != "500ms" {
		t.Errorf("debounce default = %q, want '500ms'", flag.DefValue)
	}
}

func TestIsConfigChange(t *testing.T) {
	path := "/work/wetwire.yaml"

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"editor replace", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "/work/notes.md", Op: fsnotify.Write}, false},
		{"unclean name", fsnotify.Event{Name: "/work/./wetwire.yaml", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConfigChange(tt.event, path); got != tt.want {
				t.Errorf("isConfigChange() = %v, want %v", got, tt.want)
			}
		})
	}
}

// syncBuffer guards the watch output, written from the watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunWatch_InitialSynth(t *testing.T) {
	cfg := writeConfig(t, testConfig)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, &rootOptions{configPath: cfg}, []string{"vpc"}, watchOptions{
			debounce:     10 * time.Millisecond,
			outputFormat: "json",
			outputDir:    dir,
		}, out)
	}()

	target := filepath.Join(dir, "vpc.json")
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(target); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("initial synth did not write %s; output:\n%s", target, out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runWatch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not stop after cancel")
	}
}
