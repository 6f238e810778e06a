package share

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Command pipes text into an external program, for example
// ["wl-copy"], ["xclip", "-selection", "clipboard"] or ["termux-share"].
// It serves as both a Clipboard and a Target.
type Command struct {
	argv []string
}

// NewCommand returns a Command for argv. An empty argv is rejected.
func NewCommand(argv []string) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("empty command: %w", ErrUnavailable)
	}
	return &Command{argv: append([]string(nil), argv...)}, nil
}

// WriteText runs the command with text on stdin.
func (c *Command) WriteText(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", c.argv[0], err)
	}
	return nil
}

// Share runs the command with text on stdin. A missing executable is
// reported as ErrUnavailable so callers can fall back.
func (c *Command) Share(ctx context.Context, text string) error {
	if _, err := exec.LookPath(c.argv[0]); err != nil {
		return fmt.Errorf("%s: %w", c.argv[0], ErrUnavailable)
	}
	return c.WriteText(ctx, text)
}

// Writer is a Clipboard that prints text to w, used when no clipboard
// program is configured.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer printing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteText prints text followed by a newline.
func (p *Writer) WriteText(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.w, text)
	return err
}
