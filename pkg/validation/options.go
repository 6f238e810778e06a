package validation

import (
	"fmt"

	"github.com/iwvelando/rental-quote/pkg/constants"
)

// ValidateSeason checks for a known season identifier.
func ValidateSeason(season string) error {
	if season != constants.SeasonSummer && season != constants.SeasonAutumn {
		return fmt.Errorf("expected season of %s or %s, got %s",
			constants.SeasonSummer, constants.SeasonAutumn, season)
	}
	return nil
}

// ValidatePlan checks for a known payment plan selector.
func ValidatePlan(plan string) error {
	if plan != constants.PlanTwoPayments && plan != constants.PlanThreePayments {
		return fmt.Errorf("expected payment plan of %s or %s, got %s",
			constants.PlanTwoPayments, constants.PlanThreePayments, plan)
	}
	return nil
}

// ValidateStorageBackend checks for a supported storage backend.
func ValidateStorageBackend(backend string) error {
	switch backend {
	case constants.StorageBackendFile, constants.StorageBackendRedis, constants.StorageBackendMemory:
		return nil
	}
	return fmt.Errorf("expected storage backend of %s, %s or %s, got %s",
		constants.StorageBackendFile, constants.StorageBackendRedis, constants.StorageBackendMemory, backend)
}

// ValidateTheme checks for a known theme.
func ValidateTheme(theme string) error {
	if theme != constants.ThemeDark && theme != constants.ThemeLight {
		return fmt.Errorf("expected theme of %s or %s, got %s", constants.ThemeDark, constants.ThemeLight, theme)
	}
	return nil
}

// ValidateDiscountPercent checks that a discount leaves something to pay.
func ValidateDiscountPercent(percent int) error {
	if percent < 0 || percent >= 100 {
		return fmt.Errorf("expected discount percent within [0, 100), got %d", percent)
	}
	return nil
}
