package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/handlers"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/analysis"
	"github.com/ternarybob/scrutor/internal/services/filings"
	"github.com/ternarybob/scrutor/internal/services/forensic"
	"github.com/ternarybob/scrutor/internal/services/market"
	"github.com/ternarybob/scrutor/internal/services/report"
	"github.com/ternarybob/scrutor/internal/services/scheduler"
	"github.com/ternarybob/scrutor/internal/services/validation"
	"github.com/ternarybob/scrutor/internal/storage"
	"github.com/ternarybob/scrutor/internal/worker"
	"github.com/ternarybob/scrutor/internal/xbrl"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	Sectors  *common.SectorTable
	Market   interfaces.MarketDataProvider // nil when no provider is configured
	Ingestor *filings.Ingestor
	Analyzer *analysis.Analyzer
	Runner   *worker.WorkerPool
	Reports  *report.Service

	// Nil unless [scheduler] enabled
	SchedulerService *scheduler.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	FilingsHandler   *handlers.FilingsHandler
	ForensicsHandler *handlers.ForensicsHandler
	StatusHandler    *handlers.StatusHandler
}

// New opens the datastore and wires every service. The caller must Close
// the returned App.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		_ = app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("storage", cfg.Storage.Type).
		Str("market", cfg.Market.Provider).
		Int("workers", cfg.Workers.Concurrency).
		Bool("scheduler", app.SchedulerService != nil).
		Msg("Application initialization complete")

	return app, nil
}

func (a *App) initDatabase() error {
	manager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return err
	}
	a.StorageManager = manager
	a.Logger.Debug().Str("type", a.Config.Storage.Type).Msg("Storage initialized")
	return nil
}

func (a *App) initServices() error {
	cfg := a.Config

	sectors, err := common.LoadSectorTable(cfg.Analysis.SectorsFile)
	if err != nil {
		return err
	}
	a.Sectors = sectors

	provider, err := market.NewProvider(&cfg.Market, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create market data provider: %w", err)
	}
	a.Market = provider

	validator := validation.NewValidator(ValidationConfig(cfg.Validation))

	a.Ingestor = filings.NewIngestor(
		a.StorageManager.StatementStorage(),
		validator,
		ExtractionOptions(cfg.Extraction),
		cfg.Extraction.FiscalYearEndMonth,
		a.Logger,
	)

	a.Analyzer = analysis.NewAnalyzer(
		a.StorageManager.StatementStorage(),
		a.StorageManager.ReportStorage(),
		provider,
		validator,
		ForensicConfig(cfg.Forensic),
		sectors,
		AnalysisDefaults(cfg.Analysis),
		a.Logger,
	)

	a.Runner = worker.NewWorkerPool(a.Analyzer, a.Logger, cfg.Workers.Concurrency)
	a.Reports = report.NewService(a.Logger)

	if cfg.Scheduler.Enabled {
		a.SchedulerService = scheduler.NewService(
			a.Runner,
			cfg.Scheduler.Schedule,
			cfg.Scheduler.Watchlist,
			analysis.Request{},
			a.Logger,
		)
	}
	return nil
}

func (a *App) initHandlers() {
	statements := a.StorageManager.StatementStorage()

	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.FilingsHandler = handlers.NewFilingsHandler(a.Ingestor, statements, a.Logger)
	a.ForensicsHandler = handlers.NewForensicsHandler(a.Analyzer, a.Reports, a.Logger)

	var sched handlers.SchedulerStatus
	if a.SchedulerService != nil {
		sched = a.SchedulerService
	}
	a.StatusHandler = handlers.NewStatusHandler(statements, a.StorageManager.ReportStorage(), a.Market, sched, a.Logger)
}

// StartScheduler starts the watchlist scheduler when one is configured.
func (a *App) StartScheduler() error {
	if a.SchedulerService == nil {
		return nil
	}
	return a.SchedulerService.Start()
}

// AnalyzeAll runs the analyzer over symbols on the worker pool.
func (a *App) AnalyzeAll(ctx context.Context, symbols []string, template analysis.Request) []worker.Outcome {
	return a.Runner.Run(ctx, symbols, template)
}

// Close stops the scheduler and releases the datastore
func (a *App) Close() error {
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}
	return nil
}

// ValidationConfig converts the [validation] section.
func ValidationConfig(c common.ValidationConfig) validation.Config {
	return validation.Config{
		RelativeTolerance:    c.RelativeTolerance,
		AbsoluteTolerance:    c.AbsoluteTolerance,
		FallbackPnLTolerance: c.FallbackPnLTolerance,
		MinCompleteness:      c.MinCompleteness,
	}
}

// ExtractionOptions converts the [extraction] section. Dated rates override
// the defaults from their date onwards.
func ExtractionOptions(c common.ExtractionConfig) xbrl.Options {
	opts := xbrl.DefaultOptions()
	if c.DomesticCurrency != "" {
		opts.DomesticCurrency = strings.ToUpper(c.DomesticCurrency)
	}
	if len(c.Rates) > 0 {
		opts.Rates = xbrl.NewRateTable(c.Rates)
	}
	for _, r := range c.ParsedDatedRates() {
		opts.Rates.AddDated(r.Currency, r.Date, r.Rate)
	}
	if c.DuplicateTolerance > 0 {
		opts.DuplicateTolerance = c.DuplicateTolerance
	}
	return opts
}

// ForensicConfig converts the [forensic] section. Weights are keyed by model
// name; unknown names are ignored and missing models keep weight 1.
func ForensicConfig(c common.ForensicConfig) forensic.Config {
	cfg := forensic.DefaultConfig()
	cfg.BeneishHigh = c.BeneishHigh
	cfg.BeneishMedium = c.BeneishMedium
	cfg.JScore = forensic.JScoreConfig{
		ReceivablesMateriality: c.ReceivablesMateriality,
		InventoryMateriality:   c.InventoryMateriality,
		OtherIncomeMateriality: c.OtherIncomeMateriality,
		ReservesMateriality:    c.ReservesMateriality,
	}
	for name, w := range c.Weights {
		switch m := models.ForensicModel(strings.ToLower(name)); m {
		case models.ModelBeneish, models.ModelAltman, models.ModelPiotroski, models.ModelJScore:
			cfg.Weights[m] = w
		}
	}
	cfg.MinCoverage = c.MinCoverage
	cfg.AvoidScore = c.AvoidScore
	cfg.MonitorScore = c.MonitorScore
	return cfg
}

// AnalysisDefaults converts the [analysis] section. "auto" leaves the
// statement type to be detected per symbol.
func AnalysisDefaults(c common.AnalysisConfig) analysis.Defaults {
	d := analysis.Defaults{Years: c.Years, Listed: c.Listed}
	if st, ok := models.ParseStatementType(c.StatementType); ok {
		d.StatementType = st
	}
	if ct, ok := models.ParseCompanyType(c.CompanyType); ok {
		d.CompanyType = ct
	}
	return d
}
