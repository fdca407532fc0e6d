// Package logfactorial caches log(n!) for n up to a current capacity.
//
// The table underlies internal/fisher's Fisher's-exact p-value calculation.
// Growth doubles the existing capacity rather than walking it up in fixed
// 1000-entry steps, so a caller that keeps hitting the ceiling converges in
// O(log n) regrows instead of O(n/1000).
package logfactorial

import "math"

// Table is an ordered sequence of log(i!) for i in [0, cap].
//
// f[0] is always 0, and f[i] = f[i-1] + ln(i). Table is not safe for
// concurrent use; callers that need concurrent growth should hold their own
// lock.
type Table struct {
	f []float64
}

// New builds a Table with capacity cap (f[0..cap] populated).
func New(cap int) *Table {
	t := &Table{}
	t.Grow(cap)
	return t
}

// Cap returns the largest n for which Get(n) is valid without a further Grow.
func (t *Table) Cap() int {
	return len(t.f) - 1
}

// Grow extends the table so Cap() >= cap. It is idempotent for cap <= Cap().
func (t *Table) Grow(cap int) {
	if cap <= t.Cap() {
		return
	}
	newCap := cap
	if t.Cap() >= 0 {
		// Double the existing capacity instead of growing to exactly what was
		// asked for, so repeated small overflows don't each cost a full
		// reallocation and recompute.
		doubled := (t.Cap() + 1) * 2
		if doubled > newCap {
			newCap = doubled
		}
	}
	f := make([]float64, newCap+1)
	copy(f, t.f)
	start := len(t.f)
	if start == 0 {
		f[0] = 0
		start = 1
	}
	for i := start; i <= newCap; i++ {
		f[i] = f[i-1] + math.Log(float64(i))
	}
	t.f = f
}

// Get returns log(n!). The caller must ensure n <= Cap(); Get panics
// otherwise, matching the "grow before you use it" contract the rest of this
// module relies on.
func (t *Table) Get(n int) float64 {
	return t.f[n]
}
