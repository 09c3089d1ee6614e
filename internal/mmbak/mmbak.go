// Package mmbak reads Money Manager backup files (.mmbak), which are SQLite
// databases. The backup is only ever opened read-only.
package mmbak

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"rbc2mm/internal/dateutils"
	"rbc2mm/internal/logging"
	"rbc2mm/internal/models"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"
)

// Movement kinds stored in INOUTCOME.DO_TYPE.
const (
	DoTypeIncome   = 0
	DoTypeExpense  = 1
	DoTypeTransfer = 3
)

const activeCategoriesQuery = `
SELECT c.NAME, COALESCE(p.NAME, '')
FROM ZCATEGORY c
LEFT JOIN ZCATEGORY p ON p.uid = c.pUid AND p.uid <> c.uid
WHERE c.STATUS = 0 AND c.TYPE = 1 AND c.C_IS_DEL IS NULL`

const movementsQuery = `
SELECT DO_TYPE, ZDATE, ZMONEY
FROM INOUTCOME
WHERE IS_DEL = 0`

// Backup is an open .mmbak file.
type Backup struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// Open opens the backup at path read-only.
func Open(path string, logger logging.Logger) (*Backup, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read backup %s: %w", path, err)
	}

	logger.Debug("Opened Money Manager backup", logging.Field{Key: logging.FieldFile, Value: path})
	return &Backup{db: db, path: path, logger: logger}, nil
}

// Close closes the database connection.
func (b *Backup) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Path returns the backup file path.
func (b *Backup) Path() string {
	return b.path
}

// ActiveCategories returns the live expense categories as taxonomy pairs.
// A category with a parent becomes (parent, name); a top-level category
// becomes (name, "").
func (b *Backup) ActiveCategories(ctx context.Context) ([]models.TaxonomyEntry, error) {
	rows, err := b.db.QueryContext(ctx, activeCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var out []models.TaxonomyEntry
	for rows.Next() {
		var name, parent sql.NullString
		if err := rows.Scan(&name, &parent); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if parent.String != "" {
			out = append(out, models.TaxonomyEntry{Category: parent.String, Subcategory: name.String})
			continue
		}
		out = append(out, models.TaxonomyEntry{Category: name.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return out, nil
}

// MovementSummary aggregates the movements of one kind.
type MovementSummary struct {
	Kind  string
	Count int
	Total decimal.Decimal
	First time.Time
	Last  time.Time
}

// Movements summarizes live income, expense and transfer movements, in that
// order. Other kinds are ignored.
func (b *Backup) Movements(ctx context.Context) ([]MovementSummary, error) {
	rows, err := b.db.QueryContext(ctx, movementsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	summaries := []MovementSummary{
		{Kind: string(models.TagIncome), Total: decimal.Zero},
		{Kind: string(models.TagExpense), Total: decimal.Zero},
		{Kind: "Transfer", Total: decimal.Zero},
	}
	slot := map[int]int{DoTypeIncome: 0, DoTypeExpense: 1, DoTypeTransfer: 2}

	for rows.Next() {
		var doType int
		var millis int64
		var money sql.NullString
		if err := rows.Scan(&doType, &millis, &money); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		i, ok := slot[doType]
		if !ok {
			continue
		}

		amount := decimal.Zero
		if s := strings.TrimSpace(money.String); s != "" {
			amount, err = decimal.NewFromString(s)
			if err != nil {
				b.logger.WithError(err).Warn("Skipping movement with unreadable amount",
					logging.Field{Key: "amount", Value: money.String})
				continue
			}
		}

		date := dateutils.FromEpochMillis(millis)
		s := &summaries[i]
		s.Count++
		s.Total = s.Total.Add(amount.Abs())
		if s.First.IsZero() || date.Before(s.First) {
			s.First = date
		}
		if date.After(s.Last) {
			s.Last = date
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read movements: %w", err)
	}
	return summaries, nil
}

// Table is a generic query result.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Currencies returns the CURRENCY table as stored.
func (b *Backup) Currencies(ctx context.Context) (Table, error) {
	return b.table(ctx, "SELECT * FROM CURRENCY")
}

func (b *Backup) table(ctx context.Context, query string) (Table, error) {
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return Table{}, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read columns: %w", err)
	}

	t := Table{Columns: columns}
	values := make([]sql.NullString, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return Table{}, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = v.String
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}
