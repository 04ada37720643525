package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/domino14/shoeval/shoe"
)

// CSVStore appends advantages to a CSV file: the ten counts of the shoe
// followed by its advantage.
type CSVStore struct {
	sync.Mutex
	path string
	f    *os.File
	w    *csv.Writer
}

// OpenCSV opens path for appending, writing the header if the file is new.
func OpenCSV(path string) (*CSVStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	s := &CSVStore{path: path, f: f, w: csv.NewWriter(f)}
	if st.Size() == 0 {
		if err := s.write(append(append([]string{}, Columns...), advantageColumn)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *CSVStore) write(rec []string) error {
	if err := s.w.Write(rec); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *CSVStore) Append(ctx context.Context, deck shoe.Deck, advantage float64) error {
	s.Lock()
	defer s.Unlock()
	rec := append(deckRecord(deck), strconv.FormatFloat(advantage, 'g', -1, 64))
	if err := s.write(rec); err != nil {
		return fmt.Errorf("failed to append advantage: %w", err)
	}
	return nil
}

func (s *CSVStore) Computed(ctx context.Context) (map[shoe.Deck]float64, error) {
	s.Lock()
	defer s.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()
	return readAdvantages(f, s.path)
}

func readAdvantages(f *os.File, path string) (map[shoe.Deck]float64, error) {
	computed := make(map[shoe.Deck]float64)
	err := readRecords(f, func(d shoe.Deck, rec []string) error {
		if len(rec) <= shoe.NumRanks {
			return fmt.Errorf("missing %s column", advantageColumn)
		}
		adv, err := strconv.ParseFloat(strings.TrimSpace(rec[shoe.NumRanks]), 64)
		if err != nil {
			return err
		}
		computed[d] = adv
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return computed, nil
}

// ReadAdvantages reads a data file written by CSVStore without opening it
// for writing.
func ReadAdvantages(path string) (map[shoe.Deck]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()
	return readAdvantages(f, path)
}

func (s *CSVStore) Close() error {
	s.Lock()
	defer s.Unlock()
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
