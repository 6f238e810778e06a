package share

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/rental-quote/pkg/testutil"
)

type fakeTarget struct {
	err  error
	text string
}

func (f *fakeTarget) Share(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func TestSharerShare(t *testing.T) {
	tests := []struct {
		name          string
		target        *fakeTarget
		failClipboard bool
		method        Method
		expectErr     bool
		clipboardText string
	}{
		{"Target available", &fakeTarget{}, false, MethodTarget, false, ""},
		{"No target falls back", nil, false, MethodClipboard, false, "hola"},
		{"Unavailable target falls back", &fakeTarget{err: ErrUnavailable}, false, MethodClipboard, false, "hola"},
		{"Target failure is reported", &fakeTarget{err: errors.New("cancelled")}, false, MethodNone, true, ""},
		{"Fallback failure is reported", &fakeTarget{err: ErrUnavailable}, true, MethodNone, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clipboard := &testutil.Clipboard{Fail: tt.failClipboard}
			var target Target
			if tt.target != nil {
				target = tt.target
			}

			method, err := NewSharer(target, clipboard).Share(context.Background(), "hola")
			if (err != nil) != tt.expectErr {
				t.Fatalf("Share() error = %v, expectErr %v", err, tt.expectErr)
			}
			if method != tt.method {
				t.Errorf("Share() method = %s, expected %s", method, tt.method)
			}
			if clipboard.Text() != tt.clipboardText {
				t.Errorf("clipboard = %q, expected %q", clipboard.Text(), tt.clipboardText)
			}
			if tt.method == MethodTarget && tt.target.text != "hola" {
				t.Errorf("target received %q", tt.target.text)
			}
		})
	}
}

func TestSharerCopyWithoutClipboard(t *testing.T) {
	err := NewSharer(nil, nil).Copy(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Copy() error = %v, expected ErrUnavailable", err)
	}
}

func TestCommandWriteText(t *testing.T) {
	out := filepath.Join(t.TempDir(), "clip.txt")
	cmd, err := NewCommand([]string{"sh", "-c", `cat > "$1"`, "sh", out})
	if err != nil {
		t.Fatalf("NewCommand() error = %v", err)
	}

	if err := cmd.WriteText(context.Background(), "$45.000"); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "$45.000" {
		t.Errorf("clipboard contents = %q", data)
	}
}

func TestCommandFailures(t *testing.T) {
	if _, err := NewCommand(nil); err == nil {
		t.Error("NewCommand(nil) expected error")
	}

	failing, _ := NewCommand([]string{"sh", "-c", "echo nope >&2; exit 3"})
	if err := failing.WriteText(context.Background(), "x"); err == nil {
		t.Error("WriteText() expected error from failing command")
	}

	missing, _ := NewCommand([]string{"rental-quote-no-such-share-tool"})
	if err := missing.Share(context.Background(), "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Share() error = %v, expected ErrUnavailable", err)
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteText(context.Background(), "resumen"); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if buf.String() != "resumen\n" {
		t.Errorf("output = %q", buf.String())
	}
}
