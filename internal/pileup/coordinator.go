package pileup

import (
	"fmt"
	"log"
	"strconv"
	"strings"
)

// DualPileupCoordinator drives two independently readable pileup streams —
// normal and tumor — in lock-step by chromosome and position, yielding a
// Record each time both streams have a row at the same (chrom, pos).
//
// Tumor drives the outer loop; normal is advanced (and, in the worst case,
// rewound from the start of its file) to catch up. Pathological
// interleavings where the tumor's chromosome order is not a subsequence of
// the normal's can still lose positions; that is a known limitation of the
// catch-up strategy, not something Next tries to detect or repair.
type DualPileupCoordinator struct {
	normal *Stream
	tumor  *Stream

	chromNormal, chromTumor         string
	prevChromNormal, prevChromTumor string
	posNormal, posTumor             int
	lineNormal, lineTumor           string

	// NaturalOrder switches the chromosome comparator used to decide which
	// stream is "behind" from the default lexicographic comparison to a
	// natural-sort comparison where e.g. chr2 < chr10.
	NaturalOrder bool
	Verbose      bool

	TumorLinesSeen int
	Matched        int
}

// NewDualPileupCoordinator opens normalPath and tumorPath and waits for both
// to become ready (up to four 5-second sleeps) before any row is parsed.
func NewDualPileupCoordinator(normalPath, tumorPath string) (*DualPileupCoordinator, error) {
	normal, err := OpenStream(normalPath)
	if err != nil {
		return nil, fmt.Errorf("opening normal pileup: %w", err)
	}
	tumor, err := OpenStream(tumorPath)
	if err != nil {
		normal.Close()
		return nil, fmt.Errorf("opening tumor pileup: %w", err)
	}

	c := &DualPileupCoordinator{normal: normal, tumor: tumor}

	if !normal.ready() || !tumor.ready() {
		for attempt := 0; attempt < 4 && !(normal.ready() && tumor.ready()); attempt++ {
			normal.WaitReady(1, fiveSeconds)
			tumor.WaitReady(1, fiveSeconds)
		}
	}
	if !(normal.ready() && tumor.ready()) {
		normal.Close()
		tumor.Close()
		return nil, ErrInputNotReady
	}

	if raw, ok, err := normal.ReadLine(); err != nil {
		return nil, err
	} else if ok {
		c.lineNormal = raw
		if chrom, pos, pok, perr := splitChromPos(raw); perr == nil && pok {
			c.chromNormal, c.posNormal = chrom, pos
		}
	}
	return c, nil
}

// Close releases both underlying streams.
func (c *DualPileupCoordinator) Close() error {
	err1 := c.normal.Close()
	err2 := c.tumor.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Next returns the next matched Record. ok is false once the tumor stream
// is exhausted. A non-nil error aborts the coordinator; the caller should
// still flush whatever segment state it already holds.
func (c *DualPileupCoordinator) Next() (Record, bool, error) {
	for {
		tumorRaw, ok, err := c.tumor.ReadLine()
		if err != nil {
			return Record{}, false, fmt.Errorf("tumor stream: %w", err)
		}
		if !ok {
			return Record{}, false, nil
		}
		c.TumorLinesSeen++
		c.lineTumor = tumorRaw
		if chrom, pos, pok, perr := splitChromPos(tumorRaw); perr != nil {
			return Record{}, false, fmt.Errorf("tumor line %d malformed: %w", c.TumorLinesSeen, perr)
		} else if pok {
			c.chromTumor, c.posTumor = chrom, pos
		}

		flagEOF := false
		normalWasReset := false

		for c.chromNormal != c.chromTumor && c.chromTumor != c.prevChromTumor && !flagEOF &&
			(c.chromNormal == c.prevChromTumor || c.inSortOrder(c.chromNormal, c.chromTumor)) {
			raw, ok, err := c.normal.ReadLine()
			if err != nil {
				return Record{}, false, fmt.Errorf("normal stream: %w", err)
			}
			if !ok {
				flagEOF = true
				break
			}
			c.lineNormal = raw
			if chrom, pos, pok, perr := splitChromPos(raw); perr != nil {
				return Record{}, false, fmt.Errorf("normal line malformed: %w", perr)
			} else if pok {
				c.chromNormal, c.posNormal = chrom, pos
			}
		}

		if c.chromNormal == c.chromTumor && c.chromNormal != "" {
			for c.chromNormal == c.chromTumor && c.posNormal < c.posTumor {
				raw, ok, err := c.normal.ReadLine()
				if err != nil {
					return Record{}, false, fmt.Errorf("normal stream: %w", err)
				}
				if !ok {
					break
				}
				c.lineNormal = raw
				if chrom, pos, pok, perr := splitChromPos(raw); perr != nil {
					return Record{}, false, fmt.Errorf("normal line malformed: %w", perr)
				} else if pok {
					c.chromNormal, c.posNormal = chrom, pos
				}
			}

			for c.chromNormal == c.chromTumor && c.posTumor < c.posNormal {
				raw, ok, err := c.tumor.ReadLine()
				if err != nil {
					return Record{}, false, fmt.Errorf("tumor stream: %w", err)
				}
				if !ok {
					break
				}
				c.lineTumor = raw
				if chrom, pos, pok, perr := splitChromPos(raw); perr != nil {
					return Record{}, false, fmt.Errorf("tumor line malformed: %w", perr)
				} else if pok {
					c.chromTumor, c.posTumor = chrom, pos
				}
			}

			if c.chromNormal == c.chromTumor && c.posNormal == c.posTumor {
				nf, _, err := ParseSampleLine(c.lineNormal)
				if err != nil {
					return Record{}, false, fmt.Errorf("normal row: %w", err)
				}
				tf, _, err := ParseSampleLine(c.lineTumor)
				if err != nil {
					return Record{}, false, fmt.Errorf("tumor row: %w", err)
				}

				c.prevChromNormal, c.prevChromTumor = c.chromNormal, c.chromTumor
				c.Matched++

				return Record{
					Chrom:          c.chromTumor,
					Pos:            c.posTumor,
					RefBase:        tf.RefBase,
					NormalRawDepth: nf.Depth,
					NormalQuals:    nf.Quals,
					TumorRawDepth:  tf.Depth,
					TumorQuals:     tf.Quals,
				}, true, nil
			}
			continue
		}

		if c.inSortOrder(c.chromNormal, c.chromTumor) {
			if c.Verbose {
				log.Printf("Not resetting normal file because %q < %q", c.chromNormal, c.chromTumor)
			}
			continue
		}

		if flagEOF {
			flagEOF = false
			for c.prevChromTumor == c.chromTumor && !flagEOF {
				raw, ok, err := c.tumor.ReadLine()
				if err != nil {
					return Record{}, false, fmt.Errorf("tumor stream: %w", err)
				}
				if !ok {
					flagEOF = true
					break
				}
				c.lineTumor = raw
				if chrom, pos, pok, perr := splitChromPos(raw); perr != nil {
					return Record{}, false, fmt.Errorf("tumor line malformed: %w", perr)
				} else if pok {
					c.chromTumor, c.posTumor = chrom, pos
				}
			}

			if !flagEOF && !normalWasReset {
				if c.inSortOrder(c.chromNormal, c.chromTumor) {
					if c.Verbose {
						log.Printf("Not resetting normal file because %q < %q", c.chromNormal, c.chromTumor)
					}
				} else {
					normalWasReset = true
					if err := c.normal.Reopen(); err != nil {
						return Record{}, false, fmt.Errorf("reopening normal pileup: %w", err)
					}
					c.chromNormal, c.posNormal, c.lineNormal = "", 0, ""
				}
			}
		}
	}
}

func (c *DualPileupCoordinator) inSortOrder(a, b string) bool {
	if c.NaturalOrder {
		return naturalChromLess(a, b) || a == b
	}
	return strings.Compare(a, b) <= 0
}

func splitChromPos(raw string) (chrom string, pos int, ok bool, err error) {
	cols := strings.SplitN(raw, "\t", 3)
	if len(cols) < 2 {
		return "", 0, false, nil
	}
	pos, err = strconv.Atoi(cols[1])
	if err != nil {
		return "", 0, false, fmt.Errorf("malformed position %q: %w", cols[1], err)
	}
	return cols[0], pos, true, nil
}
