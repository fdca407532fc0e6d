package fisher

import (
	"math"
	"testing"
)

func TestPSymmetry(t *testing.T) {
	e := New(200)
	cases := [][4]int{
		{10, 20, 5, 15},
		{1, 1, 1, 1},
		{0, 10, 10, 0},
		{30, 30, 30, 30},
	}
	for _, c := range cases {
		a, b, c2, d := c[0], c[1], c[2], c[3]
		p1 := e.P(a, b, c2, d)
		p2 := e.P(b, a, d, c2)
		p3 := e.P(c2, d, a, b)
		if !closeEnough(p1, p2) || !closeEnough(p1, p3) {
			t.Fatalf("P(%d,%d,%d,%d)=%v, P(b,a,d,c)=%v, P(c,d,a,b)=%v: not symmetric", a, b, c2, d, p1, p2, p3)
		}
	}
}

func TestRightTailedPIsValidProbability(t *testing.T) {
	e := New(100)
	a, b, c, d := 5, 10, 10, 5
	p := e.RightTailedP(a, b, c, d)
	if p < 0 || p > 1.0001 {
		t.Fatalf("RightTailedP(%d,%d,%d,%d) = %v, not a valid probability", a, b, c, d, p)
	}
}

func TestLogPNaNBeyondCapacity(t *testing.T) {
	e := New(10)
	if !math.IsNaN(e.LogP(10, 10, 10, 10)) {
		t.Fatalf("LogP with margins exceeding MaxSize() did not return NaN")
	}
}

func TestRightTailedPMonotonicWithShift(t *testing.T) {
	e := New(500)
	// a stronger observed shift toward d (the direction the right tail walks)
	// should yield a smaller or equal right-tailed p-value than a milder one.
	pSmallShift := e.RightTailedP(20, 20, 18, 22)
	pLargeShift := e.RightTailedP(20, 20, 5, 60)
	if pLargeShift > pSmallShift {
		t.Fatalf("RightTailedP(large shift)=%v > RightTailedP(small shift)=%v, want large shift more significant, i.e. smaller p", pLargeShift, pSmallShift)
	}
}

func TestTwoTailedPAtLeastOneTailed(t *testing.T) {
	e := New(200)
	a, b, c, d := 10, 10, 30, 5
	right := e.RightTailedP(a, b, c, d)
	left := e.LeftTailedP(a, b, c, d)
	two := e.TwoTailedP(a, b, c, d)
	// The two-tailed sum always contains the whole tail on the observed
	// table's less likely side, so it is at least the smaller one-tailed p.
	if two < math.Min(right, left)-1e-9 {
		t.Fatalf("TwoTailedP=%v smaller than the smaller one-tailed p (right=%v, left=%v)", two, right, left)
	}
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
