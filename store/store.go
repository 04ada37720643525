// Package store persists computed shoe advantages and reads the shoe samples
// that the batch driver works through.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/domino14/shoeval/shoe"
)

const (
	KindCSV    = "csv"
	KindSQLite = "sqlite"
)

// Columns is the header of sample and advantage files, one column per rank.
var Columns = []string{"a", "2", "3", "4", "5", "6", "7", "8", "9", "t"}

const advantageColumn = "advantage"

// AdvantageStore holds the expectation of every shoe evaluated so far.
type AdvantageStore interface {
	// Computed returns every stored shoe with its advantage.
	Computed(ctx context.Context) (map[shoe.Deck]float64, error)
	// Append records the advantage of one shoe.
	Append(ctx context.Context, deck shoe.Deck, advantage float64) error
	Close() error
}

// Open opens the store of the given kind at path.
func Open(kind, path string) (AdvantageStore, error) {
	switch kind {
	case "", KindCSV:
		return OpenCSV(path)
	case KindSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("unknown store kind %q", kind)
}

// ReadSamples reads a file of shoe compositions, ten count columns per row.
// A header row is skipped. Columns past the tenth are ignored.
func ReadSamples(path string) ([]shoe.Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open samples: %w", err)
	}
	defer f.Close()
	var decks []shoe.Deck
	err = readRecords(f, func(d shoe.Deck, _ []string) error {
		decks = append(decks, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decks, nil
}

// WriteSamples writes decks in the format ReadSamples reads.
func WriteSamples(w io.Writer, decks []shoe.Deck) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, d := range decks {
		if err := cw.Write(deckRecord(d)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deckRecord(d shoe.Deck) []string {
	rec := make([]string, 0, len(Columns)+1)
	for _, c := range d.Counts() {
		rec = append(rec, strconv.Itoa(int(c)))
	}
	return rec
}

var errHeader = errors.New("header row")

func parseDeckRecord(rec []string) (shoe.Deck, error) {
	if len(rec) < shoe.NumRanks {
		return shoe.Deck{}, fmt.Errorf("want %d count columns, got %d", shoe.NumRanks, len(rec))
	}
	var counts [shoe.NumRanks]uint16
	for i := range counts {
		c, err := strconv.ParseUint(strings.TrimSpace(rec[i]), 10, 16)
		if err != nil {
			if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), Columns[0]) {
				return shoe.Deck{}, errHeader
			}
			return shoe.Deck{}, fmt.Errorf("column %s: %w", Columns[i], err)
		}
		counts[i] = uint16(c)
	}
	return shoe.NewDeck(counts), nil
}

// readRecords calls fn for every data row of r.
func readRecords(r io.Reader, fn func(shoe.Deck, []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		d, err := parseDeckRecord(rec)
		if errors.Is(err, errHeader) && line == 1 {
			continue
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(d, rec); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
