package stats

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Count(), len(c.scores))
	}
}

func TestWeightedMatchesRepeated(t *testing.T) {
	is := is.New(t)
	weighted := &Statistic{}
	weighted.PushWeighted(-0.02, 3)
	weighted.PushWeighted(0.01, 1)
	weighted.PushWeighted(0.005, 0)

	repeated := &Statistic{}
	for _, v := range []float64{-0.02, -0.02, -0.02, 0.01} {
		repeated.Push(v)
	}
	is.True(FuzzyEqual(weighted.Mean(), repeated.Mean()))
	is.Equal(weighted.TotalWeight(), 4.0)
	is.Equal(weighted.Count(), 2)
	assert.InDelta(t, 0.25, weighted.PositiveShare(), 1e-12)
}

func TestMinMaxAndShare(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{0.003, -0.011, 0.007, -0.002} {
		s.Push(v)
	}
	is.Equal(s.Min(), -0.011)
	is.Equal(s.Max(), 0.007)
	is.Equal(s.PositiveShare(), 0.5)
}

func TestConfidenceInterval(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	for _, v := range []float64{10, 12, 23, 23, 16, 23, 21, 16} {
		s.Push(v)
	}
	lo, hi := s.ConfidenceInterval(95)
	assert.InDelta(t, 18-1.959964*5.2372293656638/2.8284271247, lo, 1e-4)
	is.True(FuzzyEqual(hi-s.Mean(), s.Mean()-lo))
	assert.InDelta(t, 1.959964, ZVal(95), 1e-6)
}
