package equity

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Render formats v, which has a text form via fmt.Stringer, in one of the
// output formats.
func Render(v any, format string) (string, error) {
	switch format {
	case "", FormatText:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String(), nil
		}
		return fmt.Sprintf("%v", v), nil
	case FormatYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case FormatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out) + "\n", nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Deck %s\n", r.Deck)
	fmt.Fprintf(&sb, "%-6s%-12s%-12s%-12s\n", "Hand", "Weight", "EV", "Share")
	for _, h := range r.Hands {
		fmt.Fprintf(&sb, "%-6s%-12.6f%-12.6f%-12.6f\n", h.Hand, h.Weight, h.Expectation, h.Contribution())
	}
	fmt.Fprintf(&sb, "Expectation: %.6f (%.4f%%)\n", r.Expectation, 100*r.Expectation)
	fmt.Fprintf(&sb, "Nodes: %d, elapsed: %v\n", r.Nodes, r.Elapsed)
	return sb.String()
}

// Effects is a removal report with a text form.
type Effects []RemovalEffect

func (e Effects) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s%-12s%-12s\n", "Rank", "EV", "Delta")
	for _, eff := range e {
		rank := eff.Rank
		if rank == "" {
			rank = "-"
		}
		fmt.Fprintf(&sb, "%-6s%-12.6f%+-12.6f\n", rank, eff.Expectation, eff.Delta)
	}
	return sb.String()
}
