package server

import (
	"net/http"

	"github.com/ternarybob/scrutor/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Filings and statements
	mux.HandleFunc("/api/filings", s.app.FilingsHandler.IngestHandler)            // POST - ingest one filing
	mux.HandleFunc("/api/statements", s.app.FilingsHandler.ListStatementsHandler) // GET ?symbol=&type=
	mux.HandleFunc("/api/symbols", s.app.FilingsHandler.ListSymbolsHandler)       // GET

	// API routes - Forensic reports
	mux.HandleFunc(handlers.ForensicsPrefix, s.handleForensicsRoutes) // GET/POST /{symbol}, GET /{symbol}/pdf

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleForensicsRoutes routes /api/forensics/{symbol} and its /pdf suffix
func (s *Server) handleForensicsRoutes(w http.ResponseWriter, r *http.Request) {
	h := s.app.ForensicsHandler
	if RouteByPathSuffix(w, r, handlers.ForensicsPrefix, []PathSuffixRouter{
		{Suffix: "/pdf", Handler: h.PDFHandler},
	}) {
		return
	}
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet:  h.GetReportHandler,
		http.MethodPost: h.AnalyzeHandler,
	})
}
