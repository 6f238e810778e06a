package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iwvelando/rental-quote/internal/config"
	"github.com/iwvelando/rental-quote/internal/session"
	"github.com/iwvelando/rental-quote/internal/share"
	"github.com/iwvelando/rental-quote/internal/store"
	"github.com/iwvelando/rental-quote/internal/summary"
	"github.com/iwvelando/rental-quote/internal/tariff"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"github.com/iwvelando/rental-quote/pkg/output"
	"github.com/iwvelando/rental-quote/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, summary")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	season := flag.String("season", constants.SeasonSummer, "season tariff to quote: summer, autumn")
	guests := flag.String("guests", "", "number of guests")
	nights := flag.String("nights", "", "number of nights")
	price := flag.String("price", "", "price per night override, e.g. 15.000 or 1234,56")
	discount := flag.Int("discount", -1, "discount percent; negative keeps the suggested long-stay discount")
	plan := flag.String("plan", constants.DefaultPlan, "payment plan: 2 or 3")
	copyTarget := flag.String("copy", "", "copy to the clipboard: summary, total, deposit, second, balance")
	shareQuote := flag.Bool("share", false, "share the quote summary")
	importOverrides := flag.String("import-overrides", "", "YAML or JSON file with tariff overrides to save")
	resetOverrides := flag.String("reset-overrides", "", "season whose tariff override is dropped")
	listTariffs := flag.Bool("list-tariffs", false, "print the effective tariff tables")
	theme := flag.String("theme", "", "save the theme preference: dark, light")
	toggleTheme := flag.Bool("toggle-theme", false, "switch between the dark and light theme")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}
	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx := context.Background()

	kv, err := store.Open(ctx, conf.StoreOptions())
	if err != nil {
		logger.Fatal("failed to open storage",
			zap.String("op", "main"),
			zap.String("backend", conf.Storage.Backend),
			zap.Error(err),
		)
	}
	defer func() {
		_ = kv.Close()
	}()

	catalog, err := conf.LoadCatalog()
	if err != nil {
		logger.Fatal("failed to load tariff tables",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	sharer, err := newSharer(conf.Clipboard)
	if err != nil {
		logger.Fatal("failed to configure clipboard",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	s := session.New(ctx, session.Options{
		Catalog:     &catalog,
		Overrides:   store.NewOverrideStore(kv, logger),
		Preferences: store.NewPreferences(kv, conf.Preferences.DefaultTheme, logger),
		Sharer:      sharer,
		Notifier: session.NotifierFunc(func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		}),
		Logger: logger,
	})

	if err := applyPreferences(ctx, s, *theme, *toggleTheme); err != nil {
		logger.Fatal("failed to save preferences",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := applyOverrides(ctx, s, *importOverrides, *resetOverrides); err != nil {
		logger.Fatal("failed to update tariff overrides",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *listTariffs {
		for _, name := range []string{constants.SeasonSummer, constants.SeasonAutumn} {
			if err := output.TariffFormat(os.Stdout, name, s.EffectiveFor(name)); err != nil {
				logger.Fatal("failed to print tariffs",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}
	}

	if *guests == "" && *nights == "" {
		return
	}

	if err := validation.ValidateSeason(*season); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}
	if err := validation.ValidatePlan(*plan); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	s.SetSeason(*season)
	s.SetGuests(*guests)
	s.SetNights(*nights)
	if *price != "" {
		s.SetPrice(*price)
	}
	if *discount >= 0 {
		if err := validation.ValidateDiscountPercent(*discount); err != nil {
			logger.Fatal(err.Error(), zap.String("op", "main"))
		}
		if *discount != s.DiscountPercent() {
			s.SelectDiscount(*discount)
		}
	}
	s.SetPlan(*plan)

	q, ok := s.Calculate()
	if !ok {
		logger.Fatal("price per night, nights and guests must all be positive",
			zap.String("op", "main"),
			zap.String("guests", *guests),
			zap.String("nights", *nights),
			zap.String("price", s.Price()),
		)
	}

	if err := output.Write(os.Stdout, conf.Output.Format, q); err != nil {
		logger.Fatal("failed to write quote",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *copyTarget != "" {
		if err := copyQuote(ctx, s, *copyTarget); err != nil {
			logger.Error("failed to copy",
				zap.String("op", "main"),
				zap.String("target", *copyTarget),
				zap.Error(err),
			)
		}
	}
	if *shareQuote {
		method, err := s.Share(ctx)
		if err != nil {
			logger.Error("failed to share quote",
				zap.String("op", "main"),
				zap.Error(err),
			)
		} else {
			logger.Debug("quote shared",
				zap.String("op", "main"),
				zap.Stringer("method", method),
			)
		}
	}
}

// newSharer wires the configured clipboard and share commands. Without a
// clipboard command, copied text is printed to stdout.
func newSharer(conf config.ClipboardConfig) (*share.Sharer, error) {
	var clipboard share.Clipboard = share.NewWriter(os.Stdout)
	if len(conf.Command) > 0 {
		cmd, err := share.NewCommand(conf.Command)
		if err != nil {
			return nil, err
		}
		clipboard = cmd
	}

	var target share.Target
	if len(conf.ShareCommand) > 0 {
		cmd, err := share.NewCommand(conf.ShareCommand)
		if err != nil {
			return nil, err
		}
		target = cmd
	}
	return share.NewSharer(target, clipboard), nil
}

func applyPreferences(ctx context.Context, s *session.Session, theme string, toggle bool) error {
	if theme != "" {
		if err := validation.ValidateTheme(theme); err != nil {
			return err
		}
		if err := s.SetTheme(ctx, theme); err != nil {
			return err
		}
	}
	if toggle {
		if _, err := s.ToggleTheme(ctx); err != nil {
			return err
		}
	}
	return nil
}

func applyOverrides(ctx context.Context, s *session.Session, importPath, resetSeason string) error {
	if importPath != "" {
		data, err := os.ReadFile(importPath)
		if err != nil {
			return fmt.Errorf("failed to read overrides file: %w", err)
		}
		var overrides tariff.Overrides
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return fmt.Errorf("failed to parse overrides file: %w", err)
		}
		if err := s.SaveOverrides(ctx, overrides); err != nil {
			return err
		}
	}
	if resetSeason != "" {
		if err := validation.ValidateSeason(resetSeason); err != nil {
			return err
		}
		if err := s.ResetOverrides(ctx, resetSeason); err != nil {
			return err
		}
	}
	return nil
}

// copyQuote copies the summary or one of the quote's amounts, identified by
// the line it is shown on.
func copyQuote(ctx context.Context, s *session.Session, target string) error {
	target = strings.ToLower(strings.TrimSpace(target))
	if target == "summary" {
		return s.CopySummary(ctx)
	}

	line, ok := pickLine(s.Lines(), target)
	if !ok {
		return fmt.Errorf("nothing to copy for %s", strconv.Quote(target))
	}
	return s.CopyValue(ctx, line.Amount, line.CopyLabel)
}

func pickLine(lines []summary.Line, target string) (summary.Line, bool) {
	if len(lines) == 0 {
		return summary.Line{}, false
	}

	var wanted string
	switch target {
	case "total":
		// The discounted total, when present, follows the original total.
		if len(lines) > 1 && lines[1].CopyLabel == "Total con descuento" {
			return lines[1], true
		}
		return lines[0], true
	case "balance":
		return lines[len(lines)-1], true
	case "deposit":
		wanted = "Seña"
	case "second":
		// Only the three-payment plan has a second payment before arrival.
		if len(lines) < 4 || lines[len(lines)-2].CopyLabel != "Segundo pago" {
			return summary.Line{}, false
		}
		return lines[len(lines)-2], true
	default:
		return summary.Line{}, false
	}

	for _, line := range lines {
		if line.CopyLabel == wanted {
			return line, true
		}
	}
	return summary.Line{}, false
}
