package session

import (
	"context"
	"fmt"

	"github.com/iwvelando/rental-quote/internal/share"
	"github.com/iwvelando/rental-quote/internal/summary"
	"github.com/iwvelando/rental-quote/internal/tariff"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/money"
	"go.uber.org/zap"
)

// Share action labels used in metrics.
const (
	actionCopyValue   = "copy_value"
	actionCopySummary = "copy_summary"
	actionShare       = "share"
)

// InstallPrompt is a deferred install offer handed over by the platform.
// Prompt shows it and reports whether the operator accepted.
type InstallPrompt interface {
	Prompt(ctx context.Context) (accepted bool, err error)
}

// Overrides returns the current override mapping.
func (s *Session) Overrides() tariff.Overrides { return s.overrides.Clone() }

// Builtin returns the shipped table of season.
func (s *Session) Builtin(season string) tariff.Table { return s.catalog.Builtin(season) }

// EffectiveFor returns the effective table of any season.
func (s *Session) EffectiveFor(season string) tariff.Table {
	return s.catalog.Effective(season, s.overrides)
}

// SaveOverrides persists overrides and, once stored, makes them current. On
// failure the previous mapping stays in effect.
func (s *Session) SaveOverrides(ctx context.Context, overrides tariff.Overrides) error {
	if err := overrides.Validate(); err != nil {
		s.notifier.Notify(constants.MsgSaveFailed)
		s.metrics.ObserveOverrideSave(err)
		return fmt.Errorf("invalid tariff overrides: %w", err)
	}

	err := s.repo.Save(ctx, overrides)
	s.metrics.ObserveOverrideSave(err)
	if err != nil {
		s.logger.Error("failed to save tariff overrides",
			zap.String("op", "session.SaveOverrides"),
			zap.Error(err),
		)
		s.notifier.Notify(constants.MsgSaveFailed)
		return err
	}

	s.overrides = overrides.Clone()
	s.refreshTariff()
	s.notifier.Notify(constants.MsgSaved)
	return nil
}

// EditOverrides applies edit to the current mapping and the effective table
// of the current season, then saves the result.
func (s *Session) EditOverrides(ctx context.Context, edit func(current tariff.Overrides, effective tariff.Table) tariff.Overrides) error {
	return s.SaveOverrides(ctx, edit(s.Overrides(), s.Effective()))
}

// ResetOverrides drops the override of season.
func (s *Session) ResetOverrides(ctx context.Context, season string) error {
	return s.SaveOverrides(ctx, s.overrides.Reset(season))
}

// CopyValue copies a single amount as "$<pesos>".
func (s *Session) CopyValue(ctx context.Context, amount money.Cents, label string) error {
	err := s.sharer.Copy(ctx, summary.CopyText(amount))
	s.metrics.ObserveShare(actionCopyValue, err)
	if err != nil {
		s.logger.Warn("failed to copy value",
			zap.String("op", "session.CopyValue"),
			zap.String("label", label),
			zap.Error(err),
		)
		s.notifier.Notify(constants.MsgCopyFailed)
		return err
	}
	s.notifier.Notify(summary.CopiedMessage(label))
	return nil
}

// CopySummary copies the share text of the current quote.
func (s *Session) CopySummary(ctx context.Context) error {
	err := s.sharer.Copy(ctx, s.Summary())
	s.metrics.ObserveShare(actionCopySummary, err)
	if err != nil {
		s.logger.Warn("failed to copy summary",
			zap.String("op", "session.CopySummary"),
			zap.Error(err),
		)
		s.notifier.Notify(constants.MsgCopyFailed)
		return err
	}
	s.notifier.Notify(constants.MsgSummaryCopied)
	return nil
}

// Share sends the share text to the share target, falling back to the
// clipboard.
func (s *Session) Share(ctx context.Context) (share.Method, error) {
	method, err := s.sharer.Share(ctx, s.Summary())
	s.metrics.ObserveShare(actionShare, err)
	if err != nil {
		s.logger.Warn("failed to share summary",
			zap.String("op", "session.Share"),
			zap.Error(err),
		)
		s.notifier.Notify(constants.MsgShareFailed)
		return method, err
	}
	if method == share.MethodClipboard {
		s.notifier.Notify(constants.MsgSummaryShared)
	}
	return method, nil
}

// Theme returns the saved theme.
func (s *Session) Theme(ctx context.Context) string { return s.prefs.Theme(ctx) }

// SetTheme saves theme.
func (s *Session) SetTheme(ctx context.Context, theme string) error {
	if err := s.prefs.SetTheme(ctx, theme); err != nil {
		s.logger.Warn("failed to save theme",
			zap.String("op", "session.SetTheme"),
			zap.Error(err),
		)
		s.notifier.Notify(constants.MsgSaveFailed)
		return err
	}
	return nil
}

// ToggleTheme flips the theme and returns the one now in effect.
func (s *Session) ToggleTheme(ctx context.Context) (string, error) {
	theme, err := s.prefs.ToggleTheme(ctx)
	if err != nil {
		s.logger.Warn("failed to save theme",
			zap.String("op", "session.ToggleTheme"),
			zap.Error(err),
		)
		s.notifier.Notify(constants.MsgSaveFailed)
	}
	return theme, err
}

// OfferInstall stores a deferred install prompt.
func (s *Session) OfferInstall(prompt InstallPrompt) { s.installable = prompt }

// ShouldOfferInstall reports whether the install affordance should be shown.
func (s *Session) ShouldOfferInstall(ctx context.Context) bool {
	return s.installable != nil && !s.prefs.InstallPromptDismissed(ctx)
}

// DismissInstall hides the install affordance for good.
func (s *Session) DismissInstall(ctx context.Context) error {
	s.installable = nil
	if err := s.prefs.DismissInstallPrompt(ctx); err != nil {
		s.logger.Warn("failed to save install prompt flag",
			zap.String("op", "session.DismissInstall"),
			zap.Error(err),
		)
		s.notifier.Notify(constants.MsgSaveFailed)
		return err
	}
	return nil
}

// AcceptInstall shows the stored prompt and forwards the operator's choice.
// The prompt is consumed whatever the outcome.
func (s *Session) AcceptInstall(ctx context.Context) (bool, error) {
	prompt := s.installable
	s.installable = nil
	if prompt == nil {
		return false, nil
	}

	accepted, err := prompt.Prompt(ctx)
	if err != nil {
		s.logger.Warn("install prompt failed",
			zap.String("op", "session.AcceptInstall"),
			zap.Error(err),
		)
		s.notifier.Notify(constants.MsgInstallFailed)
		return false, err
	}
	if accepted {
		s.logger.Info("install accepted", zap.String("op", "session.AcceptInstall"))
		s.notifier.Notify(constants.MsgInstallAccepted)
	}
	return accepted, nil
}
