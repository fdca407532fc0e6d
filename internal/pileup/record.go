// Package pileup reads SAMtools-style pileup and mpileup text streams and
// reduces them to the per-position records the copy-number segmenter
// consumes.
package pileup

// Record is one matched position ready for the segmenter: a chromosome and
// 1-based coordinate with raw per-sample depth and quality-string data. The
// segmenter, not this package, decides whether a record qualifies for
// comparison (normalRawDepth >= minCoverage and a non-empty normal quality
// string) or forces closure of an open segment as a gap.
type Record struct {
	Chrom          string
	Pos            int
	RefBase        byte
	NormalRawDepth int
	NormalQuals    string
	TumorRawDepth  int
	TumorQuals     string
}
