package stats

import (
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		samples []int
		mean    float64
		stdev   float64
	}
	cases := []tc{
		{[]int{5, 7, 9, 9, 6, 9, 9, 7}, 7.625, 1.5979898086569},
		{[]int{1}, 1, 0},
		{[]int{}, 0, 0},
		{[]int{9, 9}, 9, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, v := range c.samples {
			s.Push(float64(v))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Iterations(), len(c.samples))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(95), 1.959963984540054))
	is.True(FuzzyEqual(ZVal(99), 2.5758293035489))
}

func TestMargin(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	is.Equal(s.Margin(99), 0.0)
	for _, v := range []float64{1, 0.5, 1, 0.5} {
		s.Push(v)
	}
	// stdev 0.288675..., standard error 0.144337...
	is.True(FuzzyEqual(s.Margin(95), 1.959963984540054*0.14433756729740643))
}
