package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/domino14/shoeval/shoe"
)

var sqlColumns = lo.Map(Columns, func(c string, _ int) string {
	return "c" + c
})

// SQLiteStore keeps advantages in a SQLite table keyed by shoe composition.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// one connection, so an in-memory database is shared and writes serialize
	db.SetMaxOpenConns(1)
	cols := lo.Map(sqlColumns, func(c string, _ int) string {
		return c + " INTEGER NOT NULL"
	})
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS advantages (
	%s,
	advantage REAL NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (%s))`, strings.Join(cols, ",\n\t"), strings.Join(sqlColumns, ", "))
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create advantages table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, deck shoe.Deck, advantage float64) error {
	q := fmt.Sprintf("INSERT OR REPLACE INTO advantages (%s, advantage) VALUES (%s?)",
		strings.Join(sqlColumns, ", "), strings.Repeat("?, ", len(sqlColumns)))
	args := make([]any, 0, shoe.NumRanks+1)
	for _, c := range deck.Counts() {
		args = append(args, int64(c))
	}
	args = append(args, advantage)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("failed to append advantage: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Computed(ctx context.Context) (map[shoe.Deck]float64, error) {
	q := fmt.Sprintf("SELECT %s, advantage FROM advantages", strings.Join(sqlColumns, ", "))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query advantages: %w", err)
	}
	defer rows.Close()
	computed := make(map[shoe.Deck]float64)
	for rows.Next() {
		var counts [shoe.NumRanks]int64
		var adv float64
		dest := make([]any, 0, shoe.NumRanks+1)
		for i := range counts {
			dest = append(dest, &counts[i])
		}
		dest = append(dest, &adv)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		var c [shoe.NumRanks]uint16
		for i, n := range counts {
			c[i] = uint16(n)
		}
		computed[shoe.NewDeck(c)] = adv
	}
	return computed, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
