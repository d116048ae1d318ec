package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalogue exports and inserts/updates products by key.
//
// Expected headers: key,name,description,price,originalPrice,category,
// inventory,sizes,colors,image. Sizes and colors are ';' separated. A row
// with an empty key and an image adds that image to the previous product.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
}

func NewCSVImporter(r io.Reader, products ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, products: products}
}

type csvRow struct {
	line      int
	Key       string
	Name      string
	Desc      string
	Price     string
	Original  string
	Category  string
	Inventory string
	Sizes     []string
	Colors    []string
	ImageURLs []string
}

// Run parses CSV rows and upserts one product per key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["key"]; !ok {
		return 0, fmt.Errorf("missing key column: %w", domain.ErrInvalidInput)
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.line = line

		if row.Key != "" {
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
		if current != nil {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p, err := row.product()
	if err != nil {
		return fmt.Errorf("line %d key %q: %w", row.line, row.Key, err)
	}
	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	return nil
}

func (r *csvRow) product() (domain.Product, error) {
	if r.Name == "" || r.Price == "" || r.Category == "" {
		return domain.Product{}, fmt.Errorf("missing required fields: %w", domain.ErrInvalidInput)
	}
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid price %q: %w", r.Price, domain.ErrInvalidInput)
	}
	p := domain.Product{
		Key:         r.Key,
		Name:        r.Name,
		Description: r.Desc,
		Price:       price,
		Category:    r.Category,
		Sizes:       r.Sizes,
		Colors:      r.Colors,
		Images:      r.ImageURLs,
	}
	if len(r.ImageURLs) > 0 {
		p.Image = r.ImageURLs[0]
	}
	if r.Original != "" {
		orig, err := decimal.NewFromString(r.Original)
		if err != nil {
			return domain.Product{}, fmt.Errorf("invalid original price %q: %w", r.Original, domain.ErrInvalidInput)
		}
		p.OriginalPrice = &orig
	}
	if r.Inventory != "" {
		n, err := strconv.Atoi(r.Inventory)
		if err != nil {
			return domain.Product{}, fmt.Errorf("invalid inventory %q: %w", r.Inventory, domain.ErrInvalidInput)
		}
		p.Inventory = n
	}
	return p, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	key := pick(record, index, "key")
	imageURL := pick(record, index, "image")
	if key == "" && imageURL == "" {
		return nil
	}

	row := &csvRow{
		Key:       key,
		Name:      pick(record, index, "name"),
		Desc:      pick(record, index, "description"),
		Price:     pick(record, index, "price"),
		Original:  pick(record, index, "originalPrice"),
		Category:  pick(record, index, "category"),
		Inventory: pick(record, index, "inventory"),
		Sizes:     splitList(pick(record, index, "sizes")),
		Colors:    splitList(pick(record, index, "colors")),
	}
	if imageURL != "" {
		row.ImageURLs = []string{imageURL}
	}
	return row
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
