package pileup

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
)

// maxParseErrors bounds how many malformed mpileup rows Next tolerates
// before giving up on the stream entirely.
const maxParseErrors = 5

// ErrTooManyParseErrors signals that Next gave up after maxParseErrors
// malformed rows. It is early termination, not an I/O failure: the driver
// logs it and exits with exitSuccess rather than exitIOError.
var ErrTooManyParseErrors = errors.New("pileup: too many parsing exceptions")

// MpileupReader parses a merged normal+tumor mpileup stream: chrom, pos,
// ref, depthN, basesN, qualsN, depthT, basesT, qualsT. It drives the
// single-file mode of the driver and owns its own parse-error counter,
// since there is no separate coordinator wrapping it in that mode.
type MpileupReader struct {
	src     *Stream
	lineNum int
	Verbose bool

	ParseErrors int
}

// NewMpileupReader wraps src (already opened, possibly after a readiness
// wait) for line-oriented mpileup parsing.
func NewMpileupReader(src *Stream) *MpileupReader {
	return &MpileupReader{src: src}
}

// Next returns the next qualifying Record. ok is false at EOF.
//
// Under-width rows are silently skipped (optionally logged when Verbose). A
// row with a malformed integer field is logged and counted rather than
// aborting the stream outright; Next gives up and returns a non-nil error
// only once maxParseErrors such rows have been seen.
func (r *MpileupReader) Next() (rec Record, ok bool, err error) {
	for {
		line, ok, err := r.src.ReadLine()
		if err != nil {
			return Record{}, false, err
		}
		if !ok {
			return Record{}, false, nil
		}
		r.lineNum++

		cols := strings.Split(line, "\t")
		if len(cols) < 8 {
			if r.Verbose {
				log.Printf("Incomplete mpileup at line %d; line being skipped.", r.lineNum)
			}
			continue
		}

		parsed, perr := parseMpileupCols(cols)
		if perr != nil {
			r.ParseErrors++
			log.Printf("Parsing exception on line %d: %v", r.lineNum, perr)
			if r.ParseErrors >= maxParseErrors {
				return Record{}, false, fmt.Errorf("%w (%d); exiting", ErrTooManyParseErrors, r.ParseErrors)
			}
			continue
		}
		return parsed, true, nil
	}
}

func parseMpileupCols(cols []string) (Record, error) {
	pos, err := strconv.Atoi(cols[1])
	if err != nil {
		return Record{}, fmt.Errorf("malformed position %q: %w", cols[1], err)
	}
	rec := Record{
		Chrom:   cols[0],
		Pos:     pos,
		RefBase: upperByte(cols[2]),
	}

	if len(cols) > 3 {
		rec.NormalRawDepth, err = strconv.Atoi(cols[3])
		if err != nil {
			return Record{}, fmt.Errorf("malformed normal depth %q: %w", cols[3], err)
		}
	}
	if len(cols) > 5 {
		rec.NormalQuals = cols[5]
	}
	if len(cols) > 6 {
		rec.TumorRawDepth, err = strconv.Atoi(cols[6])
		if err != nil {
			return Record{}, fmt.Errorf("malformed tumor depth %q: %w", cols[6], err)
		}
	}
	if len(cols) > 8 {
		rec.TumorQuals = cols[8]
	}
	return rec, nil
}

func upperByte(s string) byte {
	if len(s) == 0 {
		return 0
	}
	b := s[0]
	if b >= 'a' && b <= 'z' {
		b -= 'a' - 'A'
	}
	return b
}
