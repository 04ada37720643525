package automatic

import (
	"fmt"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"

	"github.com/domino14/shoeval/stats"
	"github.com/domino14/shoeval/store"
)

const histogramBins = 15

// AnalyzeDataFile summarizes a file of computed advantages.
func AnalyzeDataFile(path string) (string, error) {
	computed, err := store.ReadAdvantages(path)
	if err != nil {
		return "", err
	}
	advs := lo.Values(computed)
	st := &stats.Statistic{}
	for _, a := range advs {
		st.Push(a)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Shoes evaluated: %d\n", st.Count())
	if st.Count() == 0 {
		return sb.String(), nil
	}
	fmt.Fprintf(&sb, "Mean advantage: %.6f  Stdev: %.6f\n", st.Mean(), st.Stdev())
	lo95, hi95 := st.ConfidenceInterval(95)
	fmt.Fprintf(&sb, "95%% interval of the mean: [%.6f, %.6f]\n", lo95, hi95)
	fmt.Fprintf(&sb, "Min: %.6f  Max: %.6f\n", st.Min(), st.Max())
	fmt.Fprintf(&sb, "Player advantage: %.3f%% of shoes\n", 100*st.PositiveShare())
	if st.Count() > 1 && st.Max() > st.Min() {
		sb.WriteString("\n")
		hist := histogram.Hist(histogramBins, advs)
		if err := histogram.Fprint(&sb, hist, histogram.Linear(40)); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}
