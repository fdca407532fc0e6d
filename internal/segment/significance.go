package segment

import (
	"log"
	"math"

	"github.com/dasnellings/cnvscan/internal/fisher"
)

// significance computes the right-tailed Fisher's-exact p-value for a
// depth shift, growing the shared log-factorial table on demand and
// substituting the left tail when the right tail saturates near 1.00.
//
// Grow always produces a table big enough for margins that fit in an int,
// so the NaN branch below is a defensive fallback, not a load-bearing
// retry path.
func significance(f *fisher.Exact, expNormal, expTumor, obsNormal, obsTumor int) float64 {
	if expNormal < 0 {
		expNormal = 0
	}
	if expTumor < 0 {
		expTumor = 0
	}
	if obsNormal < 0 {
		obsNormal = 0
	}
	if obsTumor < 0 {
		obsTumor = 0
	}

	n := expNormal + expTumor + obsNormal + obsTumor
	if n > f.MaxSize() {
		f.Grow(n)
	}

	p := f.RightTailedP(expNormal, expTumor, obsNormal, obsTumor)
	if math.IsNaN(p) {
		log.Printf("Warning: unable to calculate p-value for %d,%d,%d,%d", expNormal, expTumor, obsNormal, obsTumor)
		return 1
	}

	if p >= 0.999 {
		if lp := f.LeftTailedP(expNormal, expTumor, obsNormal, obsTumor); !math.IsNaN(lp) && lp < p {
			p = lp
		}
	}
	return p
}
