package equity

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/shoeval/engine"
	"github.com/domino14/shoeval/shoe"
)

// ChartCell is the best play for one starting hand against one up-card.
type ChartCell struct {
	Up          string        `json:"up" yaml:"up"`
	Best        engine.Action `json:"best" yaml:"best"`
	Expectation float64       `json:"expectation" yaml:"expectation"`
}

type ChartRow struct {
	Hand  string      `json:"hand" yaml:"hand"`
	Cells []ChartCell `json:"cells" yaml:"cells,flow"`
}

// Chart is a basic-strategy table specific to one known shoe.
type Chart struct {
	Deck string     `json:"deck" yaml:"deck"`
	Rows []ChartRow `json:"rows" yaml:"rows"`
}

// StrategyChart finds the best of Stand, Hit, Double and Split for every
// starting pair against every up-card, with the three cards dealt out of
// deck. Combinations the deck cannot deal are left out.
func StrategyChart(s *engine.Solver, deck shoe.Deck) (c *Chart, err error) {
	defer engine.RecoverViolation(&err)
	c = &Chart{Deck: deck.String()}
	for _, h := range startingHands(deck) {
		row := ChartRow{Hand: h.Hand}
		for _, up := range shoe.Ranks {
			rest := deck.Without(h.first, h.second)
			if rest.Count(up) == 0 {
				continue
			}
			st := engine.GameState{
				Player: shoe.NewHand(h.first, h.second),
				Dealer: shoe.NewHand(up),
				Deck:   rest.Without(up),
			}
			best := s.BestAction(st)
			row.Cells = append(row.Cells, ChartCell{
				Up:          up.String(),
				Best:        best,
				Expectation: s.Value(st, best),
			})
		}
		c.Rows = append(c.Rows, row)
	}
	return c, nil
}

var chartLetters = map[engine.Action]string{
	engine.Stand:  "S",
	engine.Hit:    "H",
	engine.Double: "D",
	engine.Split:  "P",
}

// String renders the chart with one letter per cell: S, H, D or P.
func (c *Chart) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Deck %s\n", c.Deck)
	sb.WriteString("     ")
	for _, r := range shoe.Ranks {
		fmt.Fprintf(&sb, "%-3s", r.String())
	}
	sb.WriteString("\n")
	for _, row := range c.Rows {
		fmt.Fprintf(&sb, "%-5s", row.Hand)
		cells := lo.SliceToMap(row.Cells, func(cell ChartCell) (string, ChartCell) {
			return cell.Up, cell
		})
		for _, r := range shoe.Ranks {
			cell, ok := cells[r.String()]
			if !ok {
				sb.WriteString(".  ")
				continue
			}
			fmt.Fprintf(&sb, "%-3s", chartLetters[cell.Best])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
