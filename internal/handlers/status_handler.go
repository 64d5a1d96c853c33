package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/services/scheduler"
)

// AppStatus is the body of GET /api/status
type AppStatus struct {
	Version   common.VersionInfo         `json:"version"`
	StartedAt time.Time                  `json:"started_at"`
	Symbols   int                        `json:"symbols"`
	Reports   []interfaces.ReportSummary `json:"reports"`
	Market    string                     `json:"market"`
	Scheduler *scheduler.Status          `json:"scheduler,omitempty"`
}

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	statements interfaces.StatementStorage
	reports    interfaces.ReportStorage
	market     interfaces.MarketDataProvider
	scheduler  SchedulerStatus
	startedAt  time.Time
	logger     arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler. market and scheduler may be nil.
func NewStatusHandler(
	statements interfaces.StatementStorage,
	reports interfaces.ReportStorage,
	market interfaces.MarketDataProvider,
	scheduler SchedulerStatus,
	logger arbor.ILogger,
) *StatusHandler {
	return &StatusHandler{
		statements: statements,
		reports:    reports,
		market:     market,
		scheduler:  scheduler,
		startedAt:  time.Now(),
		logger:     logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbols, err := h.statements.ListSymbols(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list symbols")
		WriteError(w, http.StatusInternalServerError, "Failed to read status")
		return
	}
	reports, err := h.reports.ListReports(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list reports")
		WriteError(w, http.StatusInternalServerError, "Failed to read status")
		return
	}
	if reports == nil {
		reports = []interfaces.ReportSummary{}
	}

	status := AppStatus{
		Version:   common.GetVersionInfo(),
		StartedAt: h.startedAt,
		Symbols:   len(symbols),
		Reports:   reports,
		Market:    "none",
	}
	if h.market != nil {
		status.Market = h.market.Name()
	}
	if h.scheduler != nil {
		st := h.scheduler.Status()
		status.Scheduler = &st
	}
	WriteJSON(w, http.StatusOK, status)
}
