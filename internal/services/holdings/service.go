// Package holdings loads asset worksheets into normalized records
package holdings

import (
	"context"
	"fmt"
	"strings"

	"github.com/minjaelee/finboard/internal/common"
	"github.com/minjaelee/finboard/internal/interfaces"
	"github.com/minjaelee/finboard/internal/models"
)

// Worksheet column labels as they appear in the source spreadsheet. The sheet
// is maintained by hand in Korean; the loader is the only place these strings
// exist.
const (
	colBroker      = "증권사"
	colOwner       = "소유"
	colName        = "종목명"
	colCode        = "종목코드"
	colTicker      = "종목티커"
	colAccountType = "계좌구분"
	colNature      = "성격"
	colQuantity    = "보유수량"
	colUnitCost    = "매수단가"
	colUnitCostOld = "매입가" // legacy label still present on some tabs
	colPurchaseFX  = "매입환율"
	colCoinName    = "코인"
	colCoinSymbol  = "심볼"
	colCoinID      = "coingecko_id"
	colCurrency    = "통화"
	colCryptoQty   = "수량(qty)"
	colCryptoCost  = "평균매수가(avg_price)"
	colCashAmount  = "금액"
)

// Service implements the HoldingsService interface. Records are rebuilt from
// the live spreadsheet on every call; nothing is persisted.
type Service struct {
	sheets interfaces.SheetSource
	config *common.SheetsConfig
	logger *common.Logger
}

// NewService creates a new holdings service
func NewService(sheets interfaces.SheetSource, config *common.SheetsConfig, logger *common.Logger) *Service {
	return &Service{
		sheets: sheets,
		config: config,
		logger: logger,
	}
}

// worksheet is a fetched tab with its header resolved to column indexes.
type worksheet struct {
	name   string
	index  map[string]int
	rows   [][]string
}

// cell returns a trimmed cell value, tolerating short rows.
func (w *worksheet) cell(row []string, column string) string {
	idx, ok := w.index[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (w *worksheet) has(column string) bool {
	_, ok := w.index[column]
	return ok
}

// fetch retrieves a worksheet and validates its header. Header cells are
// trimmed and legacy labels renamed before the required-column check, so a
// tab still using the old cost label passes.
func (s *Service) fetch(ctx context.Context, name string, required []string) (*worksheet, error) {
	rows, err := s.sheets.GetWorksheet(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load worksheet %q: %w", name, err)
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == colUnitCostOld {
			h = colUnitCost
		}
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &models.SchemaError{Sheet: name, Missing: missing}
	}

	s.logger.Debug().Str("worksheet", name).Int("rows", len(rows)-1).Msg("Worksheet loaded")

	return &worksheet{name: name, index: index, rows: rows[1:]}, nil
}

// isBlank reports whether a data row has no content at all. Sheets pad the
// used grid with empty trailing rows.
func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// padSymbol left-zero-pads a domestic exchange code to its fixed six-digit
// width. Numeric-looking cells lose leading zeros in the spreadsheet.
func padSymbol(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return code
	}
	for len(code) < 6 {
		code = "0" + code
	}
	return code
}

// LoadCategory reads one asset category's worksheet into normalized records.
func (s *Service) LoadCategory(ctx context.Context, category models.AssetCategory) ([]models.HoldingRecord, error) {
	switch category {
	case models.CategoryDomestic:
		return s.loadDomestic(ctx)
	case models.CategoryOverseas:
		return s.loadOverseas(ctx)
	case models.CategoryCrypto:
		return s.loadCrypto(ctx)
	}
	return nil, fmt.Errorf("category %q has no holdings worksheet", category)
}

func (s *Service) loadDomestic(ctx context.Context) ([]models.HoldingRecord, error) {
	ws, err := s.fetch(ctx, s.config.DomesticSheet, []string{
		colBroker, colOwner, colName, colCode, colAccountType, colNature, colQuantity, colUnitCost,
	})
	if err != nil {
		return nil, err
	}

	var records []models.HoldingRecord
	for _, row := range ws.rows {
		if isBlank(row) {
			continue
		}
		records = append(records, models.HoldingRecord{
			Category:    models.CategoryDomestic,
			Broker:      ws.cell(row, colBroker),
			Owner:       ws.cell(row, colOwner),
			Name:        ws.cell(row, colName),
			Symbol:      padSymbol(ws.cell(row, colCode)),
			AccountType: ws.cell(row, colAccountType),
			Nature:      ws.cell(row, colNature),
			Quantity:    models.ParseNumber(ws.cell(row, colQuantity)),
			UnitCost:    models.ParseNumber(ws.cell(row, colUnitCost)),
			Currency:    models.CurrencyKRW,
		})
	}
	return records, nil
}

func (s *Service) loadOverseas(ctx context.Context) ([]models.HoldingRecord, error) {
	ws, err := s.fetch(ctx, s.config.OverseasSheet, []string{
		colBroker, colOwner, colTicker, colAccountType, colNature, colQuantity, colUnitCost, colPurchaseFX,
	})
	if err != nil {
		return nil, err
	}

	var records []models.HoldingRecord
	for i, row := range ws.rows {
		if isBlank(row) {
			continue
		}

		// Tickers trade in USD unless the optional currency column says otherwise.
		currency := models.CurrencyUSD
		if ws.has(colCurrency) {
			if raw := ws.cell(row, colCurrency); raw != "" {
				currency, err = models.ParseCurrency(raw)
				if err != nil {
					return nil, fmt.Errorf("sheet %q row %d: %w", ws.name, i+2, err)
				}
			}
		}

		records = append(records, models.HoldingRecord{
			Category:    models.CategoryOverseas,
			Broker:      ws.cell(row, colBroker),
			Owner:       ws.cell(row, colOwner),
			Symbol:      strings.ToUpper(ws.cell(row, colTicker)),
			AccountType: ws.cell(row, colAccountType),
			Nature:      ws.cell(row, colNature),
			Quantity:    models.ParseNumber(ws.cell(row, colQuantity)),
			UnitCost:    models.ParseNumber(ws.cell(row, colUnitCost)),
			Currency:    currency,
			PurchaseFX:  models.ParseNumber(ws.cell(row, colPurchaseFX)),
		})
	}
	return records, nil
}

func (s *Service) loadCrypto(ctx context.Context) ([]models.HoldingRecord, error) {
	ws, err := s.fetch(ctx, s.config.CryptoSheet, []string{
		colBroker, colOwner, colCoinName, colCoinSymbol, colCoinID, colCurrency, colCryptoQty, colCryptoCost,
	})
	if err != nil {
		return nil, err
	}

	var records []models.HoldingRecord
	for i, row := range ws.rows {
		if isBlank(row) {
			continue
		}

		currency, err := models.ParseCurrency(ws.cell(row, colCurrency))
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: %w", ws.name, i+2, err)
		}

		records = append(records, models.HoldingRecord{
			Category:    models.CategoryCrypto,
			Broker:      ws.cell(row, colBroker),
			Owner:       ws.cell(row, colOwner),
			Name:        ws.cell(row, colCoinName),
			Symbol:      strings.ToUpper(ws.cell(row, colCoinSymbol)),
			CoinID:      strings.ToLower(ws.cell(row, colCoinID)),
			AccountType: ws.cell(row, colAccountType),
			Quantity:    models.ParseNumber(ws.cell(row, colCryptoQty)),
			UnitCost:    models.ParseNumber(ws.cell(row, colCryptoCost)),
			Currency:    currency,
		})
	}
	return records, nil
}

// LoadCash reads the cash worksheet.
func (s *Service) LoadCash(ctx context.Context) ([]models.CashRecord, error) {
	ws, err := s.fetch(ctx, s.config.CashSheet, []string{
		colBroker, colOwner, colAccountType, colCurrency, colNature, colCashAmount,
	})
	if err != nil {
		return nil, err
	}

	var records []models.CashRecord
	for i, row := range ws.rows {
		if isBlank(row) {
			continue
		}

		currency, err := models.ParseCurrency(ws.cell(row, colCurrency))
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: %w", ws.name, i+2, err)
		}

		records = append(records, models.CashRecord{
			Broker:      ws.cell(row, colBroker),
			Owner:       ws.cell(row, colOwner),
			AccountType: ws.cell(row, colAccountType),
			Currency:    currency,
			Nature:      ws.cell(row, colNature),
			Amount:      models.ParseNumber(ws.cell(row, colCashAmount)),
		})
	}
	return records, nil
}

// Ensure Service implements HoldingsService
var _ interfaces.HoldingsService = (*Service)(nil)
