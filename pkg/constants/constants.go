// Package constants provides shared constants for the rental-quote application.
package constants

// Season identifiers. They double as keys in the persisted override mapping.
const (
	SeasonSummer = "summer"
	SeasonAutumn = "autumn"
)

// Payment plan selectors.
const (
	// PlanTwoPayments splits the total into a 50% deposit and a 50% balance.
	PlanTwoPayments = "2"

	// PlanThreePayments splits the total into 20% / 30% / 50%.
	PlanThreePayments = "3"

	// DefaultPlan is the plan selected on startup and after a clear.
	DefaultPlan = PlanThreePayments
)

// Monetary constants
const (
	// CentsPerPeso converts whole pesos to cents.
	CentsPerPeso = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// BaselineDiscountPercents are always offered as discount options, whatever
// the tariff says.
var BaselineDiscountPercents = []int{10, 15, 20}

// Persisted state keys.
const (
	// KeyThemePreference holds "dark" or "light".
	KeyThemePreference = "themePreference"

	// KeyTariffOverrides holds the JSON override mapping.
	KeyTariffOverrides = "tariffOverrides"

	// KeyInstallPromptDismissed holds "true" once the operator dismissed the
	// install prompt.
	KeyInstallPromptDismissed = "installPromptDismissed"
)

// Theme values
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatSummary prints the shareable quote message
	OutputFormatSummary = "summary"
)

// Storage backend constants
const (
	StorageBackendFile   = "file"
	StorageBackendRedis  = "redis"
	StorageBackendMemory = "memory"

	// DefaultStatePath is where the file backend keeps its key-value document.
	DefaultStatePath = "rental-quote-state.json"

	// DefaultRedisAddr is used when the redis backend has no address.
	DefaultRedisAddr = "localhost:6379"

	// DefaultRedisKeyPrefix namespaces persisted keys in a shared redis.
	DefaultRedisKeyPrefix = "rental-quote:"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix prefixes environment overrides of configuration keys.
	EnvPrefix = "RENTAL_QUOTE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes caps JSON request bodies (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRequestsPerSecond is the steady API rate per server.
	DefaultRequestsPerSecond = 20.0

	// DefaultRateBurst is the burst size of the API rate limiter.
	DefaultRateBurst = 40
)

// Feedback messages shown to the operator.
const (
	MsgSaved           = "Cambios guardados"
	MsgSaveFailed      = "Error al guardar"
	MsgCopyFailed      = "Error al copiar"
	MsgShareFailed     = "Error al compartir"
	MsgSummaryCopied   = "¡Presupuesto copiado!"
	MsgSummaryShared   = "Resumen copiado al portapapeles"
	MsgInstallFailed   = "Error al instalar"
	MsgInstallAccepted = "Instalación aceptada"
)
