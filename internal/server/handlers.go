package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/models"
	"github.com/minjaelee/finboard/internal/services/report"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":        cfg.Environment,
		"logging_level":      cfg.Logging.Level,
		"spreadsheet_id":     cfg.Clients.Sheets.SpreadsheetID,
		"sheets_api_key":     maskSecret(cfg.Clients.Sheets.APIKey),
		"sheets_configured":  cfg.Clients.Sheets.APIKey != "" && cfg.Clients.Sheets.SpreadsheetID != "",
		"equity_ttl":         cfg.Quotes.GetEquityTTL().String(),
		"crypto_ttl":         cfg.Quotes.GetCryptoTTL().String(),
		"gold_override":      cfg.Quotes.GoldOverride,
		"domestic_worksheet": cfg.Clients.Sheets.DomesticSheet,
		"overseas_worksheet": cfg.Clients.Sheets.OverseasSheet,
		"crypto_worksheet":   cfg.Clients.Sheets.CryptoSheet,
		"cash_worksheet":     cfg.Clients.Sheets.CashSheet,
	})
}

// --- Dashboard handlers ---

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	sheets := s.app.Config.Clients.Sheets
	categories := []map[string]string{
		{"category": string(models.CategoryDomestic), "worksheet": sheets.DomesticSheet},
		{"category": string(models.CategoryOverseas), "worksheet": sheets.OverseasSheet},
		{"category": string(models.CategoryCrypto), "worksheet": sheets.CryptoSheet},
		{"category": string(models.CategoryCash), "worksheet": sheets.CashSheet},
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
	})
}

func (s *Server) handleCategoryTable(w http.ResponseWriter, r *http.Request, rawCategory string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	category, err := models.ParseCategory(rawCategory)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Unknown category: %s", rawCategory))
		return
	}

	view := models.ParseCurrencyView(r.URL.Query().Get("currency"))

	goldOverride, ok := s.goldOverride(w, r)
	if !ok {
		return
	}

	table, err := s.app.ReportService.CategoryTable(r.Context(), category, view, goldOverride)
	if err != nil {
		s.writeReportError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, table)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	goldOverride, ok := s.goldOverride(w, r)
	if !ok {
		return
	}

	summary, err := s.app.ReportService.Summary(r.Context(), goldOverride)
	if err != nil {
		s.writeReportError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAllocationChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	goldOverride, ok := s.goldOverride(w, r)
	if !ok {
		return
	}

	png, err := s.app.ReportService.AllocationChart(r.Context(), goldOverride)
	if err != nil {
		if errors.Is(err, report.ErrNoChartData) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeReportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// goldOverride reads the gold_override query parameter, falling back to the
// configured default. Returns ok=false after writing a 400 for bad input.
func (s *Server) goldOverride(w http.ResponseWriter, r *http.Request) (float64, bool) {
	raw := r.URL.Query().Get("gold_override")
	if raw == "" {
		return s.app.Config.Quotes.GoldOverride, true
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid gold_override: %s", raw))
		return 0, false
	}
	return v, true
}

// writeReportError maps pipeline failures to status codes. Bad spreadsheet
// data is the caller's to fix (422); a dead upstream is not (502). Either way
// only the requested view is affected.
func (s *Server) writeReportError(w http.ResponseWriter, err error) {
	var schemaErr *models.SchemaError
	if errors.As(err, &schemaErr) {
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   schemaErr.Error(),
			Sheet:   schemaErr.Sheet,
			Missing: schemaErr.Missing,
		})
		return
	}

	var curErr *models.ErrUnknownCurrency
	if errors.As(err, &curErr) {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.logger.Error().Err(err).Msg("Report generation failed")
	WriteError(w, http.StatusBadGateway, fmt.Sprintf("Holdings source unavailable: %v", err))
}
