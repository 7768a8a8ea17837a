package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"go.uber.org/zap"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog exports and inserts or updates products by code.
//
// Expected header: code,title,description,price,stock,category,thumbnail.
// A row with an empty code and a thumbnail adds another image to the product above it.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      *zap.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logging.OrNop(logger).Named("importer"),
	}
}

type csvRow struct {
	line        int
	Code        string
	Title       string
	Description string
	Price       string
	Stock       string
	Category    string
	Thumbnails  []string
}

var requiredColumns = []string{"code", "title", "price", "stock"}

// Run parses CSV rows and upserts one product per code.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("%w: missing column %q", domain.ErrInvalidInput, col)
		}
	}

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		row := parseRow(record, index, line)
		if row == nil {
			continue
		}

		if row.Code != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil && len(row.Thumbnails) > 0 {
			current.Thumbnails = append(current.Thumbnails, row.Thumbnails...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.Info("catalog import finished", zap.Int("products", imported))
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Title == "" {
		return fmt.Errorf("%w: line %d: title is required for code %q", domain.ErrInvalidInput, row.line, row.Code)
	}
	cents, err := ParsePriceCents(row.Price)
	if err != nil {
		return fmt.Errorf("line %d: code %q: %w", row.line, row.Code, err)
	}
	stock, err := strconv.Atoi(row.Stock)
	if err != nil || stock < 0 {
		return fmt.Errorf("%w: line %d: invalid stock %q for code %q", domain.ErrInvalidInput, row.line, row.Stock, row.Code)
	}

	p := domain.Product{
		Code:        row.Code,
		Title:       row.Title,
		Description: row.Description,
		PriceCents:  cents,
		Stock:       stock,
		Category:    row.Category,
		Thumbnails:  row.Thumbnails,
		Active:      true,
	}

	saved, err := i.productRepo.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Code, err)
	}
	i.logger.Debug("product upserted", zap.String("code", saved.Code), zap.String("product_id", saved.ID))
	return nil
}

// ParsePriceCents converts a decimal amount such as "12.5" or "12.50" to cents.
func ParsePriceCents(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, fmt.Errorf("%w: price is required", domain.ErrInvalidInput)
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("%w: invalid price %q", domain.ErrInvalidInput, s)
		}
		if len(frac) == 1 {
			frac += "0"
		}
	} else {
		frac = "00"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("%w: invalid price %q", domain.ErrInvalidInput, s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("%w: invalid price %q", domain.ErrInvalidInput, s)
	}
	return units*100 + cents, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) *csvRow {
	code := pick(record, index, "code")
	thumbnail := pick(record, index, "thumbnail")

	if code == "" && thumbnail == "" {
		return nil
	}

	row := &csvRow{
		line:        line,
		Code:        code,
		Title:       pick(record, index, "title"),
		Description: pick(record, index, "description"),
		Price:       pick(record, index, "price"),
		Stock:       pick(record, index, "stock"),
		Category:    pick(record, index, "category"),
	}
	if thumbnail != "" {
		row.Thumbnails = []string{thumbnail}
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
