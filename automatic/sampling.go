package automatic

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/shoeval/shoe"
	"github.com/domino14/shoeval/store"
)

var ErrNoUnevaluated = errors.New("every sample has been evaluated")

// RandomUnevaluated picks uniformly among the samples that are not in
// computed.
func RandomUnevaluated(samples []shoe.Deck, computed map[shoe.Deck]float64) (shoe.Deck, error) {
	left := lo.Filter(samples, func(d shoe.Deck, _ int) bool {
		_, ok := computed[d]
		return !ok
	})
	if len(left) == 0 {
		return shoe.Deck{}, ErrNoUnevaluated
	}
	return left[frand.Intn(len(left))], nil
}

// GenerateSamples writes n shoes to path, each what is left of full after
// penetration random cards have been dealt.
func GenerateSamples(path string, n int, full shoe.Deck, penetration int) error {
	decks := make([]shoe.Deck, n)
	for i := range decks {
		d, err := shoe.RandomPenetration(full, penetration)
		if err != nil {
			return err
		}
		decks[i] = d
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create samples file: %w", err)
	}
	if err := store.WriteSamples(f, decks); err != nil {
		f.Close()
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return f.Close()
}
