package dataset

import (
	"time"

	"sales-dashboard/internal/models"
)

// Source identifies the file a table was read from.
type Source struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

func (s Source) Same(o Source) bool {
	return s.Path == o.Path && s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// Table is an immutable set of enriched transactions. Views produced by
// Where share the parent's rows; nothing mutates them after construction.
type Table struct {
	rows     []models.Transaction
	distinct map[models.Dimension][]string
	source   Source
	loadedAt time.Time
}

// NewTable derives the computed columns of every row and builds a table
// from them. The input slice is copied.
func NewTable(rows []models.Transaction) *Table {
	enriched := make([]models.Transaction, len(rows))
	copy(enriched, rows)
	for i := range enriched {
		enriched[i].Derive()
	}
	return newTable(enriched, Source{}, time.Now())
}

func newTable(rows []models.Transaction, src Source, loadedAt time.Time) *Table {
	return &Table{
		rows:     rows,
		distinct: distinctValues(rows),
		source:   src,
		loadedAt: loadedAt,
	}
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the backing slice. Callers must treat it as read-only.
func (t *Table) Rows() []models.Transaction {
	return t.rows
}

// Distinct lists the values of d in order of first appearance.
func (t *Table) Distinct(d models.Dimension) []string {
	values := t.distinct[d]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func (t *Table) Source() Source {
	return t.source
}

func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// Where returns a view holding the rows that satisfy keep, in table order.
func (t *Table) Where(keep func(tx *models.Transaction) bool) *Table {
	rows := make([]models.Transaction, 0, len(t.rows))
	for i := range t.rows {
		if keep(&t.rows[i]) {
			rows = append(rows, t.rows[i])
		}
	}
	return newTable(rows, t.source, t.loadedAt)
}

func distinctValues(rows []models.Transaction) map[models.Dimension][]string {
	out := make(map[models.Dimension][]string, len(models.GroupDimensions))
	for _, d := range models.GroupDimensions {
		seen := make(map[string]struct{})
		values := make([]string, 0)
		for i := range rows {
			v := rows[i].Value(d)
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		out[d] = values
	}
	return out
}
