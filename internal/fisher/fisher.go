// Package fisher computes one- and two-tailed p-values for a 2x2
// contingency table using a cached log-factorial table, avoiding overflow of
// large factorials by staying in log-space until the final exp().
package fisher

import (
	"math"

	"github.com/dasnellings/cnvscan/internal/logfactorial"
)

// Exact evaluates Fisher's exact test against 2x2 tables whose margins sum
// to at most its current capacity.
type Exact struct {
	f *logfactorial.Table
}

// New returns an Exact precomputed for margin sums up to maxSize.
func New(maxSize int) *Exact {
	return &Exact{f: logfactorial.New(maxSize)}
}

// MaxSize is the largest a+b+c+d this Exact can evaluate without growing.
func (e *Exact) MaxSize() int {
	return e.f.Cap()
}

// Grow extends the underlying log-factorial table to cover margin sums up to
// maxSize.
func (e *Exact) Grow(maxSize int) {
	e.f.Grow(maxSize)
}

// LogP returns the log-probability of the 2x2 table [[a,b],[c,d]] under the
// hypergeometric distribution. Returns NaN if a+b+c+d exceeds MaxSize().
func (e *Exact) LogP(a, b, c, d int) float64 {
	n := a + b + c + d
	if n > e.MaxSize() || a < 0 || b < 0 || c < 0 || d < 0 {
		return math.NaN()
	}
	f := e.f
	return f.Get(a+b) + f.Get(c+d) + f.Get(a+c) + f.Get(b+d) -
		(f.Get(a) + f.Get(b) + f.Get(c) + f.Get(d) + f.Get(n))
}

// P returns exp(LogP(a,b,c,d)).
func (e *Exact) P(a, b, c, d int) float64 {
	return math.Exp(e.LogP(a, b, c, d))
}

// RightTailedP sums p over the table and every table obtained by stepping
// (a+1,b-1,c-1,d+1) while b>0 && c>0 (min(b,c) steps).
func (e *Exact) RightTailedP(a, b, c, d int) float64 {
	n := a + b + c + d
	if n > e.MaxSize() {
		return math.NaN()
	}
	p := e.P(a, b, c, d)
	min := b
	if c < min {
		min = c
	}
	for i := 0; i < min; i++ {
		a, b, c, d = a+1, b-1, c-1, d+1
		p += e.P(a, b, c, d)
	}
	return p
}

// LeftTailedP sums p over the table and every table obtained by stepping
// (a-1,b+1,c+1,d-1) while a>0 && d>0 (min(a,d) steps).
func (e *Exact) LeftTailedP(a, b, c, d int) float64 {
	n := a + b + c + d
	if n > e.MaxSize() {
		return math.NaN()
	}
	p := e.P(a, b, c, d)
	min := a
	if d < min {
		min = d
	}
	for i := 0; i < min; i++ {
		a, b, c, d = a-1, b+1, c+1, d-1
		p += e.P(a, b, c, d)
	}
	return p
}

// TwoTailedP sums p0 = P(a,b,c,d) plus every table in either tail direction
// whose p is <= p0.
func (e *Exact) TwoTailedP(a, b, c, d int) float64 {
	n := a + b + c + d
	if n > e.MaxSize() {
		return math.NaN()
	}
	p0 := e.P(a, b, c, d)
	p := p0

	ra, rb, rc, rd := a, b, c, d
	min := rb
	if rc < min {
		min = rc
	}
	for i := 0; i < min; i++ {
		ra, rb, rc, rd = ra+1, rb-1, rc-1, rd+1
		if tempP := e.P(ra, rb, rc, rd); tempP <= p0 {
			p += tempP
		}
	}

	la, lb, lc, ld := a, b, c, d
	min = la
	if ld < min {
		min = ld
	}
	for i := 0; i < min; i++ {
		la, lb, lc, ld = la-1, lb+1, lc+1, ld-1
		if tempP := e.P(la, lb, lc, ld); tempP <= p0 {
			p += tempP
		}
	}

	return p
}
