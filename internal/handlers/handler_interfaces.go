package handlers

import (
	"context"

	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/analysis"
	"github.com/ternarybob/scrutor/internal/services/filings"
	"github.com/ternarybob/scrutor/internal/services/report"
	"github.com/ternarybob/scrutor/internal/services/scheduler"
)

// FilingIngestor parses and stores one filing.
type FilingIngestor interface {
	Ingest(ctx context.Context, req filings.Request) (*filings.Result, error)
}

// ReportAnalyzer runs or fetches forensic reports.
type ReportAnalyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*models.ForensicReport, error)
	Report(ctx context.Context, symbol string, statementType models.StatementType) (*models.ForensicReport, error)
}

// ReportRenderer renders a report in one output format.
type ReportRenderer interface {
	Render(r *models.ForensicReport, format report.Format) ([]byte, error)
}

// SchedulerStatus reports the watchlist scheduler state.
type SchedulerStatus interface {
	Status() scheduler.Status
}
