package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/iwvelando/rental-quote/pkg/constants"
	"go.uber.org/zap"
)

// Preferences persists the operator's UI preferences.
type Preferences struct {
	kv           KV
	defaultTheme string
	logger       *zap.Logger
}

// NewPreferences wraps kv. defaultTheme is used until a theme is saved; an
// invalid default falls back to light.
func NewPreferences(kv KV, defaultTheme string, logger *zap.Logger) *Preferences {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !validTheme(defaultTheme) {
		defaultTheme = constants.ThemeLight
	}
	return &Preferences{kv: kv, defaultTheme: defaultTheme, logger: logger}
}

// Theme returns the saved theme, or the default when none (or an unknown
// value) is stored. Read failures are logged and yield the default.
func (p *Preferences) Theme(ctx context.Context) string {
	value, found, err := p.kv.Get(ctx, constants.KeyThemePreference)
	if err != nil {
		p.logger.Warn("failed to read theme preference",
			zap.String("op", "store.Preferences.Theme"),
			zap.Error(err),
		)
		return p.defaultTheme
	}
	if !found || !validTheme(value) {
		return p.defaultTheme
	}
	return value
}

// SetTheme saves theme, which must be "dark" or "light".
func (p *Preferences) SetTheme(ctx context.Context, theme string) error {
	if !validTheme(theme) {
		return fmt.Errorf("invalid theme %q, expected %s or %s", theme, constants.ThemeDark, constants.ThemeLight)
	}
	if err := p.kv.Set(ctx, constants.KeyThemePreference, theme); err != nil {
		return fmt.Errorf("failed to save theme preference: %w", err)
	}
	return nil
}

// ToggleTheme flips between dark and light and returns the new theme.
func (p *Preferences) ToggleTheme(ctx context.Context) (string, error) {
	next := constants.ThemeDark
	if p.Theme(ctx) == constants.ThemeDark {
		next = constants.ThemeLight
	}
	if err := p.SetTheme(ctx, next); err != nil {
		return p.Theme(ctx), err
	}
	return next, nil
}

// InstallPromptDismissed reports whether the operator dismissed the install
// prompt.
func (p *Preferences) InstallPromptDismissed(ctx context.Context) bool {
	value, found, err := p.kv.Get(ctx, constants.KeyInstallPromptDismissed)
	if err != nil {
		p.logger.Warn("failed to read install prompt flag",
			zap.String("op", "store.Preferences.InstallPromptDismissed"),
			zap.Error(err),
		)
		return false
	}
	if !found {
		return false
	}
	dismissed, err := strconv.ParseBool(value)
	return err == nil && dismissed
}

// DismissInstallPrompt records that the install prompt should not be
// offered again.
func (p *Preferences) DismissInstallPrompt(ctx context.Context) error {
	if err := p.kv.Set(ctx, constants.KeyInstallPromptDismissed, strconv.FormatBool(true)); err != nil {
		return fmt.Errorf("failed to save install prompt flag: %w", err)
	}
	return nil
}

func validTheme(theme string) bool {
	return theme == constants.ThemeDark || theme == constants.ThemeLight
}
