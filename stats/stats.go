// Package stats keeps running summaries of shoe advantages.
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic is a running mean and variance over weighted observations
// (West's weighted form of Welford's algorithm). The zero value is empty.
type Statistic struct {
	count       int
	totalWeight float64
	mean        float64
	// sum of weighted squared deviations from the mean
	m2       float64
	min, max float64
	positive float64
}

// Push adds an observation of weight 1.
func (s *Statistic) Push(val float64) {
	s.PushWeighted(val, 1)
}

// PushWeighted adds an observation with the given weight. Non-positive
// weights are ignored.
func (s *Statistic) PushWeighted(val, weight float64) {
	if weight <= 0 {
		return
	}
	if s.count == 0 || val < s.min {
		s.min = val
	}
	if s.count == 0 || val > s.max {
		s.max = val
	}
	s.count++
	s.totalWeight += weight
	delta := val - s.mean
	s.mean += delta * weight / s.totalWeight
	s.m2 += weight * delta * (val - s.mean)
	if val > 0 {
		s.positive += weight
	}
}

func (s *Statistic) Count() int {
	return s.count
}

func (s *Statistic) TotalWeight() float64 {
	return s.totalWeight
}

func (s *Statistic) Mean() float64 {
	return s.mean
}

// Variance is the sample variance for unit weights, and the reliability
// weighted equivalent otherwise.
func (s *Statistic) Variance() float64 {
	if s.count <= 1 {
		return 0.0
	}
	return s.m2 / (s.totalWeight * float64(s.count-1) / float64(s.count))
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.count == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / float64(s.count))
}

func (s *Statistic) Min() float64 {
	return s.min
}

func (s *Statistic) Max() float64 {
	return s.max
}

// PositiveShare is the weighted fraction of observations above zero.
func (s *Statistic) PositiveShare() float64 {
	if s.totalWeight == 0 {
		return 0
	}
	return s.positive / s.totalWeight
}

var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ZVal is the two-tailed critical value of the standard normal for a
// confidence given in percent, e.g. about 1.96 for 95.
func ZVal(confidence float64) float64 {
	return standardNormal.Quantile((1 + confidence/100) / 2)
}

// ConfidenceInterval is the two-sided interval around the mean at the given
// confidence, in percent.
func (s *Statistic) ConfidenceInterval(confidence float64) (lo, hi float64) {
	half := ZVal(confidence) * s.StandardError()
	return s.mean - half, s.mean + half
}

func (s *Statistic) String() string {
	return fmt.Sprintf("n=%d mean=%.6f stdev=%.6f min=%.6f max=%.6f positive=%.2f%%",
		s.count, s.Mean(), s.Stdev(), s.min, s.max, 100*s.PositiveShare())
}
