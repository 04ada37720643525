package score

import (
	"gonum.org/v1/gonum/floats"
)

// Distribution maps each Score to a probability. It is a plain array so that
// iteration, and therefore floating point summation, always happens in Score
// order.
type Distribution [NumScores]float64

// Certain is the distribution with all of its mass on s.
func Certain(s Score) Distribution {
	var d Distribution
	d[s] = 1
	return d
}

func (d *Distribution) Add(s Score, p float64) {
	d[s] += p
}

func (d *Distribution) Prob(s Score) float64 {
	return d[s]
}

// AddScaled accumulates p times every entry of o.
func (d *Distribution) AddScaled(o *Distribution, p float64) {
	for i, q := range o {
		if q != 0 {
			d[i] += p * q
		}
	}
}

// Total is the sum of all probabilities; 1 for any complete distribution.
func (d *Distribution) Total() float64 {
	return floats.SumCompensated(d[:])
}

// Each calls fn for every score with nonzero probability, in ascending order.
func (d *Distribution) Each(fn func(s Score, p float64)) {
	for i, p := range d {
		if p != 0 {
			fn(Score(i), p)
		}
	}
}

// Map returns the nonzero entries.
func (d *Distribution) Map() map[Score]float64 {
	m := make(map[Score]float64)
	d.Each(func(s Score, p float64) {
		m[s] = p
	})
	return m
}

// Expectation settles a standing player score against every dealer outcome.
func (d *Distribution) Expectation(player Score) float64 {
	ev := 0.0
	d.Each(func(s Score, p float64) {
		ev += HandExpectation(player, s) * p
	})
	return ev
}
