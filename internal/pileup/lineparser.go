package pileup

import (
	"fmt"
	"strconv"
	"strings"
)

// SampleFields is the per-stream shape a single pileup row reduces to: a
// chromosome, 1-based position, and (when the row carries enough columns)
// a raw depth and quality string for whichever sample the row describes.
type SampleFields struct {
	Chrom   string
	Pos     int
	RefBase byte
	Depth   int
	Quals   string
}

// ParseSampleLine splits a single-sample pileup row and extracts its
// position and, if the row is wide enough, its depth/quality columns.
//
// Two shapes are recognized:
//   - 6-7 columns (classic pileup): chrom, pos, ref, depth, bases, quals[, mapquals].
//     Depth is column index 3, qualities column index 5.
//   - 10-11 columns (consensus+pileup row): depth at index 7, qualities at index 9.
//
// ok is false when the row has fewer than 2 tab fields and should be treated
// as a gap rather than an error. err is non-nil only when a present integer
// field fails to parse.
func ParseSampleLine(line string) (fields SampleFields, ok bool, err error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 2 {
		return SampleFields{}, false, nil
	}
	fields.Chrom = cols[0]
	fields.Pos, err = strconv.Atoi(cols[1])
	if err != nil {
		return SampleFields{}, false, fmt.Errorf("pileup: malformed position %q: %w", cols[1], err)
	}
	fields.RefBase = refBaseColumn(cols)

	depthIdx, qualIdx := 3, 5
	if len(cols) >= 10 && len(cols) <= 11 {
		depthIdx, qualIdx = 7, 9
	}
	if len(cols) > depthIdx {
		fields.Depth, err = strconv.Atoi(cols[depthIdx])
		if err != nil {
			return SampleFields{}, false, fmt.Errorf("pileup: malformed depth %q: %w", cols[depthIdx], err)
		}
	}
	if len(cols) > qualIdx {
		fields.Quals = cols[qualIdx]
	}
	return fields, true, nil
}

// refBaseColumn extracts the reference-base column (index 2) from a
// single-sample pileup row already known to have at least 3 columns. It is
// the caller's responsibility to upper-case it if the output format calls
// for it; the dual-pileup coordinator preserves the source casing while
// MpileupReader upper-cases.
func refBaseColumn(cols []string) byte {
	if len(cols) < 3 || len(cols[2]) == 0 {
		return 0
	}
	return cols[2][0]
}
