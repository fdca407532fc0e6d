package segment

import (
	"fmt"
	"math"

	"github.com/vertgenlab/gonomics/fileio"
)

// FileEmitter formats closed segments into the `.copynumber` output and
// writes them with gonomics' gzip-transparent writer, the same way the
// teacher tool opens its VCF output via fileio.EasyCreate.
type FileEmitter struct {
	out         *fileio.EasyWriter
	dataRatio   float64
	minCoverage int

	// TrackRatios, when set, makes Emit append each emitted segment's
	// log2-ratio to Ratios, for a driver's optional end-of-run summary.
	TrackRatios bool
	Ratios      []float64

	Emitted int64
}

// NewFileEmitter creates path, writes the header line, and returns an
// Emitter ready for a Segmenter.
func NewFileEmitter(path string, minCoverage int, dataRatio float64) *FileEmitter {
	out := fileio.EasyCreate(path)
	fmt.Fprintln(out, "chrom\tchr_start\tchr_stop\tnum_positions\tnormal_depth\ttumor_depth\tlog2_ratio\tgc_content")
	return &FileEmitter{out: out, dataRatio: dataRatio, minCoverage: minCoverage}
}

// Close flushes and closes the underlying writer.
func (e *FileEmitter) Close() error {
	return e.out.Close()
}

// Emit writes seg as one output row if it meets the average-depth gate,
// computing the averages, the data-ratio-adjusted log2-ratio (with the
// amplification/deletion sentinels when one sample is effectively zero),
// and the GC percentage.
func (e *FileEmitter) Emit(seg ClosedSegment) {
	if seg.Positions == 0 {
		return
	}
	avgNormal := float64(seg.SumNormal) / float64(seg.Positions)
	avgTumor := float64(seg.SumTumor) / float64(seg.Positions)
	if avgNormal < float64(e.minCoverage) && avgTumor < float64(e.minCoverage) {
		return
	}

	adjTumor := e.dataRatio * avgTumor
	gcPct := float64(seg.GCPositions) / float64(seg.Positions) * 100

	var log2ratio float64
	switch {
	case avgNormal >= 0.01 && avgTumor >= 0.01:
		log2ratio = math.Log2(adjTumor / avgNormal)
	case avgTumor >= 0.01:
		log2ratio = 2.000 // amplification sentinel: normal effectively zero
	default:
		log2ratio = -2.000 // homozygous-deletion sentinel: tumor effectively zero
	}

	fmt.Fprintf(e.out, "%s\t%d\t%d\t%d\t%.1f\t%.1f\t%.3f\t%.1f\n",
		seg.Chrom, seg.Start, seg.Stop, seg.Positions, avgNormal, avgTumor, log2ratio, gcPct)
	e.Emitted++
	if e.TrackRatios {
		e.Ratios = append(e.Ratios, log2ratio)
	}
}
