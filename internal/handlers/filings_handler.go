package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/interfaces"
	"github.com/ternarybob/scrutor/internal/models"
	"github.com/ternarybob/scrutor/internal/services/filings"
)

// MaxFilingBytes caps uploaded filing documents.
const MaxFilingBytes = 32 << 20

// FilingsHandler handles filing ingestion and statement listing
type FilingsHandler struct {
	ingestor   FilingIngestor
	statements interfaces.StatementStorage
	logger     arbor.ILogger
}

// NewFilingsHandler creates a new FilingsHandler
func NewFilingsHandler(ingestor FilingIngestor, statements interfaces.StatementStorage, logger arbor.ILogger) *FilingsHandler {
	return &FilingsHandler{
		ingestor:   ingestor,
		statements: statements,
		logger:     logger,
	}
}

// IngestHandler handles POST /api/filings. The body is the raw XBRL or
// inline XBRL document; ?symbol= and ?statement_type= override the filing's
// own metadata and ?source= names it.
func (h *FilingsHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	q := r.URL.Query()
	req := filings.Request{
		Source: q.Get("source"),
		Symbol: strings.ToUpper(strings.TrimSpace(q.Get("symbol"))),
	}
	if req.Source == "" {
		req.Source = "upload"
	}
	if s := q.Get("statement_type"); s != "" {
		st, ok := models.ParseStatementType(s)
		if !ok {
			WriteError(w, http.StatusBadRequest, "statement_type must be standalone or consolidated")
			return
		}
		req.StatementType = st
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxFilingBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "filing exceeds upload limit")
			return
		}
		WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(data) == 0 {
		WriteError(w, http.StatusBadRequest, "empty filing")
		return
	}
	req.Data = data

	result, err := h.ingestor.Ingest(r.Context(), req)
	if err != nil {
		h.logger.Warn().Err(err).Str("source", req.Source).Msg("Filing rejected")
		WriteError(w, StatusForError(err), err.Error())
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, result)
}

// ListStatementsHandler handles GET /api/statements?symbol=&type=&annual=&limit=
func (h *FilingsHandler) ListStatementsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	q := r.URL.Query()
	filter := interfaces.StatementFilter{
		Symbol: strings.ToUpper(strings.TrimSpace(q.Get("symbol"))),
		Limit:  QueryInt(r, "limit", 0),
	}
	if filter.Symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if s := q.Get("type"); s != "" {
		st, ok := models.ParseStatementType(s)
		if !ok {
			WriteError(w, http.StatusBadRequest, "type must be standalone or consolidated")
			return
		}
		filter.StatementType = st
	}
	annual, err := QueryBool(r, "annual")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "annual must be true or false")
		return
	}
	if annual != nil {
		filter.AnnualOnly = *annual
		filter.QuarterlyOnly = !*annual
	}

	stmts, err := h.statements.ListStatements(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Str("symbol", filter.Symbol).Msg("Failed to list statements")
		WriteError(w, http.StatusInternalServerError, "Failed to list statements")
		return
	}
	if stmts == nil {
		stmts = []*models.NormalizedStatement{}
	}

	h.logger.Debug().Str("symbol", filter.Symbol).Int("count", len(stmts)).Msg("Listed statements")
	WriteJSON(w, http.StatusOK, stmts)
}

// ListSymbolsHandler handles GET /api/symbols
func (h *FilingsHandler) ListSymbolsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	symbols, err := h.statements.ListSymbols(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list symbols")
		WriteError(w, http.StatusInternalServerError, "Failed to list symbols")
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	WriteJSON(w, http.StatusOK, symbols)
}
