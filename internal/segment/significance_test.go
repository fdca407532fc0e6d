package segment

import (
	"math"
	"testing"

	"github.com/dasnellings/cnvscan/internal/fisher"
)

func TestSignificanceIdenticalDepthsIsNotSignificant(t *testing.T) {
	f := fisher.New(1000)
	// The balanced table sits at the centre of a symmetric distribution, so
	// its right tail holds more than half the mass (about 0.57).
	p := significance(f, 30, 30, 30, 30)
	if p <= 0.5 {
		t.Fatalf("significance for identical depths = %v, want above 0.5", p)
	}
}

func TestSignificanceExtremeShiftIsSignificant(t *testing.T) {
	f := fisher.New(1000)
	p := significance(f, 20, 20, 20, 200)
	if p > 0.5 {
		t.Fatalf("significance for an extreme depth shift = %v, want small", p)
	}
}

func TestSignificanceGrowsTableOnDemand(t *testing.T) {
	f := fisher.New(4)
	_ = significance(f, 100, 100, 100, 100)
	if f.MaxSize() < 400 {
		t.Fatalf("MaxSize() = %d after significance() with margins summing to 400, want >= 400", f.MaxSize())
	}
}

func TestSignificanceClampsNegativeDepths(t *testing.T) {
	f := fisher.New(1000)
	p := significance(f, -5, 10, 10, 10)
	if math.IsNaN(p) {
		t.Fatalf("significance with a negative depth returned NaN")
	}
}
