// Package notify signals the native renderer that a fresh snapshot is
// available. The transport is deliberately loose: the signal is
// notify-once and may silently fail. Correctness never depends on it;
// the renderer falls back to its own staleness check.
package notify

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Notifier delivers a "refresh now" signal to the renderer.
type Notifier interface {
	Notify(ctx context.Context) error
}

// Func adapts a plain function to the Notifier interface.
type Func func(ctx context.Context) error

// Notify calls the function.
func (f Func) Notify(ctx context.Context) error {
	return f(ctx)
}

// Nop is a Notifier that does nothing, used when no notify channel is
// configured (e.g. at cold start).
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context) error {
	return nil
}

// FileTouch signals by rewriting a marker file with the current unix time.
// The renderer side watches the file for modification.
type FileTouch struct {
	Path string
}

// Notify rewrites the marker file.
func (t FileTouch) Notify(_ context.Context) error {
	if t.Path == "" {
		return nil
	}
	stamp := strconv.FormatInt(time.Now().Unix(), 10)
	if err := os.WriteFile(t.Path, []byte(stamp), 0o644); err != nil {
		return fmt.Errorf("touching notify file: %w", err)
	}
	return nil
}
