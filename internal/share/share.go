// Package share delivers quote text to the operator's clipboard or to a
// share target such as a messaging app.
package share

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable reports that a share target is not present on this system.
var ErrUnavailable = errors.New("share target unavailable")

// Clipboard accepts plain text.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Target hands plain text to an external share sheet.
type Target interface {
	Share(ctx context.Context, text string) error
}

// Method records how Share delivered the text.
type Method int

const (
	MethodNone Method = iota
	MethodTarget
	MethodClipboard
)

func (m Method) String() string {
	switch m {
	case MethodTarget:
		return "target"
	case MethodClipboard:
		return "clipboard"
	default:
		return "none"
	}
}

// Sharer prefers the share target and falls back to the clipboard when no
// target is configured or the target reports ErrUnavailable.
type Sharer struct {
	target    Target
	clipboard Clipboard
}

// NewSharer builds a Sharer. Either argument may be nil.
func NewSharer(target Target, clipboard Clipboard) *Sharer {
	return &Sharer{target: target, clipboard: clipboard}
}

// Copy writes text to the clipboard.
func (s *Sharer) Copy(ctx context.Context, text string) error {
	if s.clipboard == nil {
		return fmt.Errorf("no clipboard configured: %w", ErrUnavailable)
	}
	return s.clipboard.WriteText(ctx, text)
}

// Share delivers text through the target, or the clipboard as a fallback.
func (s *Sharer) Share(ctx context.Context, text string) (Method, error) {
	if s.target != nil {
		err := s.target.Share(ctx, text)
		if err == nil {
			return MethodTarget, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return MethodNone, fmt.Errorf("share failed: %w", err)
		}
	}

	if err := s.Copy(ctx, text); err != nil {
		return MethodNone, fmt.Errorf("clipboard fallback failed: %w", err)
	}
	return MethodClipboard, nil
}
