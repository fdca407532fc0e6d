// Package segment implements the online copy-number change-point segmenter
// and the writer that formats its closed segments.
package segment

import (
	"github.com/dasnellings/cnvscan/internal/fisher"
	"github.com/dasnellings/cnvscan/internal/pileup"
)

// Config holds the tuning knobs exposed by the copynumber command's flags.
type Config struct {
	MinCoverage     int
	MinBaseQual     int
	MinSegmentSize  int
	MaxSegmentSize  int
	PValueThreshold float64
	DataRatio       float64
}

// running is the accumulator for the segment currently being grown. It is
// open iff chrom != "".
type running struct {
	chrom                   string
	start, stop             int
	depthNormal, depthTumor int
	sumNormal, sumTumor     int64
	positions, gcPositions  int64
}

func (r *running) isOpen() bool { return r.chrom != "" }

// ClosedSegment is handed to an Emitter once a segment closes.
type ClosedSegment struct {
	Chrom                  string
	Start, Stop            int
	Positions, GCPositions int64
	SumNormal, SumTumor    int64
}

// Emitter receives closed segments; FileEmitter in this package is the
// concrete .copynumber file writer.
type Emitter interface {
	Emit(ClosedSegment)
}

// Segmenter grows a current segment base-by-base and decides, per position,
// whether to extend or close it using a Fisher's-exact significance test
// against the segment's anchor (opening) depths.
type Segmenter struct {
	cfg    Config
	cur    running
	fisher *fisher.Exact
	emit   Emitter
}

// New builds a Segmenter. Its Fisher's-exact table starts small and grows
// on demand, shared for the Segmenter's whole lifetime.
func New(cfg Config, emit Emitter) *Segmenter {
	return &Segmenter{cfg: cfg, fisher: fisher.New(1024), emit: emit}
}

// Process feeds one matched position through the segmenter. A position
// whose normal raw depth is below MinCoverage, or whose normal quality
// string is empty, is a gap: it closes any open segment (if qualifying)
// and clears segment state without extending anything.
func (s *Segmenter) Process(rec pileup.Record) {
	if rec.NormalRawDepth < s.cfg.MinCoverage || len(rec.NormalQuals) == 0 {
		s.closeIfQualifying()
		s.cur = running{}
		return
	}

	normalDepth := pileup.QualityDepth(rec.NormalQuals, s.cfg.MinBaseQual)
	tumorDepth := 0
	if len(rec.TumorQuals) > 0 {
		tumorDepth = pileup.QualityDepth(rec.TumorQuals, s.cfg.MinBaseQual)
	}

	if s.shouldExtend(rec, normalDepth, tumorDepth) {
		s.cur.sumNormal += int64(normalDepth)
		s.cur.sumTumor += int64(tumorDepth)
		s.cur.positions++
		if isGC(rec.RefBase) {
			s.cur.gcPositions++
		}
		s.cur.stop = rec.Pos
		return
	}

	s.closeIfQualifying()
	s.cur = running{
		chrom:       rec.Chrom,
		start:       rec.Pos,
		stop:        rec.Pos,
		depthNormal: normalDepth,
		depthTumor:  tumorDepth,
		sumNormal:   int64(normalDepth),
		sumTumor:    int64(tumorDepth),
		positions:   1,
	}
	if isGC(rec.RefBase) {
		s.cur.gcPositions = 1
	}
}

// shouldExtend implements the extension decision: contiguity and size caps
// close unconditionally, a small depth wobble extends as noise, and
// anything larger is arbitrated by a Fisher's-exact test against the
// segment's anchor depths.
func (s *Segmenter) shouldExtend(rec pileup.Record, normalDepth, tumorDepth int) bool {
	if !s.cur.isOpen() {
		return false
	}
	posDiff := rec.Pos - s.cur.stop
	if posDiff > 2 || s.cur.chrom != rec.Chrom {
		return false
	}
	if s.cur.positions >= int64(s.cfg.MaxSegmentSize) {
		return false
	}

	diffN := abs(s.cur.depthNormal - normalDepth)
	diffT := abs(s.cur.depthTumor - tumorDepth)
	if diffN <= 2 && diffT <= 2 {
		return true
	}

	q := significance(s.fisher, s.cur.depthNormal, s.cur.depthTumor, normalDepth, tumorDepth)
	return q >= s.cfg.PValueThreshold
}

// closeIfQualifying emits the current segment if it meets the mid-stream
// minimum-size gate (positions >= MinSegmentSize).
func (s *Segmenter) closeIfQualifying() {
	if s.cur.isOpen() && s.cur.positions >= int64(s.cfg.MinSegmentSize) {
		s.flush()
	}
}

// Finish closes any still-open segment at end of input. The final flush
// uses a strictly-greater comparison against MinSegmentSize, unlike the
// mid-stream >= gate in closeIfQualifying; the two are intentionally not
// symmetric.
func (s *Segmenter) Finish() {
	if s.cur.isOpen() && s.cur.positions > int64(s.cfg.MinSegmentSize) {
		s.flush()
	}
	s.cur = running{}
}

func (s *Segmenter) flush() {
	s.emit.Emit(ClosedSegment{
		Chrom:       s.cur.chrom,
		Start:       s.cur.start,
		Stop:        s.cur.stop,
		Positions:   s.cur.positions,
		GCPositions: s.cur.gcPositions,
		SumNormal:   s.cur.sumNormal,
		SumTumor:    s.cur.sumTumor,
	})
}

func isGC(b byte) bool {
	return b == 'C' || b == 'G' || b == 'c' || b == 'g'
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
