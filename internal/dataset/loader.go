package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize      = 10000
	defaultWorkers = 10
	dateLayout     = "2006-01-02"
	tracerName     = "sales-dashboard/dataset"
)

// Source column names.
const (
	ColDate        = "fecha"
	ColRegion      = "region"
	ColCategory    = "categoria"
	ColChannel     = "canal"
	ColSalesperson = "vendedor"
	ColProduct     = "producto"
	ColUnits       = "unidades"
	ColSales       = "ventas_total"
	ColCost        = "costo_total"
	ColTarget      = "meta_mensual"
	ColCustomer    = "cliente"
)

var requiredColumns = []string{
	ColDate, ColRegion, ColCategory, ColChannel, ColSalesperson, ColProduct,
	ColUnits, ColSales, ColCost, ColTarget, ColCustomer,
}

type columnIndex map[string]int

// Loader reads and enriches a transaction CSV.
type Loader struct {
	workers int
}

func NewLoader(workers int) *Loader {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Loader{workers: workers}
}

// Load reads path with the default worker count.
func Load(ctx context.Context, path string) (*Table, error) {
	return NewLoader(defaultWorkers).Load(ctx, path)
}

func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dataset.load")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.path", path))

	table, err := l.load(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("dataset.rows", table.Len()))
	return table, nil
}

func (l *Loader) load(ctx context.Context, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataSourceMissing, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataSourceMissing, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDataSourceMissing, path)
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &SchemaError{Reason: "missing header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", asReadError(err))
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	rows := make([]models.Transaction, 0, batchSize)
	batch := make([][]string, 0, batchSize)
	firstLine := 2

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", asReadError(err))
		}
		batch = append(batch, record)

		if len(batch) >= batchSize {
			parsed, err := l.parseBatch(ctx, batch, cols, firstLine)
			if err != nil {
				return nil, err
			}
			rows = append(rows, parsed...)
			firstLine += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		parsed, err := l.parseBatch(ctx, batch, cols, firstLine)
		if err != nil {
			return nil, err
		}
		rows = append(rows, parsed...)
	}

	src := Source{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	return newTable(rows, src, time.Now()), nil
}

// parseBatch parses records concurrently; output keeps input order and the
// reported error is the one with the lowest line number.
func (l *Loader) parseBatch(ctx context.Context, batch [][]string, cols columnIndex, firstLine int) ([]models.Transaction, error) {
	out := make([]models.Transaction, len(batch))
	errs := make([]error, len(batch))

	var g errgroup.Group
	g.SetLimit(l.workers)

	chunk := (len(batch) + l.workers - 1) / l.workers
	for start := 0; start < len(batch); start += chunk {
		end := min(start+chunk, len(batch))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				tx, err := parseRecord(batch[i], cols, firstLine+i)
				if err != nil {
					errs[i] = err
					continue
				}
				out[i] = tx
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func indexColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, &SchemaError{Column: name, Reason: "required column missing"}
		}
	}
	return cols, nil
}

func parseRecord(record []string, cols columnIndex, line int) (models.Transaction, error) {
	field := func(name string) (string, error) {
		idx := cols[name]
		if idx >= len(record) {
			return "", &SchemaError{Line: line, Column: name, Reason: "row has too few columns"}
		}
		return strings.TrimSpace(record[idx]), nil
	}

	var tx models.Transaction
	var err error

	raw, err := field(ColDate)
	if err != nil {
		return tx, err
	}
	if tx.Date, err = time.Parse(dateLayout, raw); err != nil {
		return tx, &SchemaError{Line: line, Column: ColDate, Value: raw, Reason: "expected date YYYY-MM-DD"}
	}

	strs := []struct {
		col string
		dst *string
	}{
		{ColRegion, &tx.Region},
		{ColCategory, &tx.Category},
		{ColChannel, &tx.Channel},
		{ColSalesperson, &tx.Salesperson},
		{ColProduct, &tx.Product},
		{ColCustomer, &tx.Customer},
	}
	for _, s := range strs {
		if *s.dst, err = field(s.col); err != nil {
			return tx, err
		}
	}

	if raw, err = field(ColUnits); err != nil {
		return tx, err
	}
	units, err := strconv.Atoi(raw)
	if err != nil || units < 0 {
		return tx, &SchemaError{Line: line, Column: ColUnits, Value: raw, Reason: "expected non-negative integer"}
	}
	tx.Units = units

	amounts := []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColSales, &tx.Sales},
		{ColCost, &tx.Cost},
		{ColTarget, &tx.Target},
	}
	for _, a := range amounts {
		if raw, err = field(a.col); err != nil {
			return tx, err
		}
		if *a.dst, err = decimal.NewFromString(raw); err != nil {
			return tx, &SchemaError{Line: line, Column: a.col, Value: raw, Reason: "expected decimal amount"}
		}
	}

	tx.Derive()
	return tx, nil
}

func asReadError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &SchemaError{Line: perr.Line, Reason: perr.Err.Error()}
	}
	return fmt.Errorf("%w: %w", ErrDataSourceMissing, err)
}
