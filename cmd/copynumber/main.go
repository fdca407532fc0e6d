// Command copynumber segments tumor/normal read depth from pileup input
// into copy-number regions, written as a `.copynumber` table.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dasnellings/cnvscan/internal/pileup"
	"github.com/dasnellings/cnvscan/internal/segment"
	"github.com/guptarohit/asciigraph"
	"github.com/vertgenlab/gonomics/exception"
	"golang.org/x/exp/slices"
)

const (
	exitSuccess       = 0
	exitParamError    = 1
	exitInputNotReady = 10
	exitIOError       = 11
)

func usage() {
	fmt.Fprint(os.Stderr,
		"copynumber - Segment tumor/normal read depth into copy-number regions from pileup input.\n\n" +
			"USAGE:\n" +
			"  copynumber [options] normal_pileup tumor_pileup [output]\n" +
			"  copynumber [options] --mpileup 1 normal_tumor.mpileup [output]\n" +
			"\tnormal_pileup - SAMtools pileup file for the normal sample\n" +
			"\ttumor_pileup  - SAMtools pileup file for the tumor sample\n" +
			"\toutput        - output base name for files [output]\n" +
			"***If you have a single mpileup, use --mpileup 1 instead of two pileup files***\n\n" +
			"options:\n")
	flag.PrintDefaults()
}

func main() {
	// exception.PanicOnErr in cleanup panics on a failed output close; map
	// that to the I/O-failure exit code instead of Go's default panic exit.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%v", r)
			os.Exit(exitIOError)
		}
	}()
	os.Exit(run())
}

// run holds everything main used to, except the final os.Exit: os.Exit never
// runs deferred calls, so the emitter's Close (and therefore its buffered
// output flush) has to happen inside this frame before returning a code.
func run() int {
	minCoverage := flag.Int("min-coverage", 10, "Minimum normal raw depth per position for comparison. Also the per-segment average-depth emission gate.")
	minBaseQual := flag.Int("min-base-qual", 15, "Minimum Phred quality for a base to count toward depth.")
	minSegmentSize := flag.Int("min-segment-size", 10, "Minimum positions for a segment to be emitted.")
	maxSegmentSize := flag.Int("max-segment-size", 100, "Forced-close cap on positions per segment.")
	pValue := flag.Float64("p-value", 0.01, "Fisher's-exact p-value threshold; p >= threshold extends the segment.")
	dataRatio := flag.Float64("data-ratio", 1.0, "Multiplier applied to the tumor average depth before computing the log2-ratio.")
	mpileupMode := flag.String("mpileup", "", "Any value selects merged normal+tumor mpileup input instead of two separate pileup files.")
	naturalOrder := flag.Bool("natural-chrom-order", false, "Compare chromosome names with natural ordering (chr2 < chr10) instead of lexicographic, in dual-pileup mode.")
	verbose := flag.Bool("verbose", false, "Log per-row skip warnings and print an end-of-run log2-ratio summary.")
	help := flag.Bool("h", false, "Print usage and exit.")
	flag.BoolVar(help, "help", false, "Print usage and exit.")
	flag.Usage = usage
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		return exitParamError
	}

	if *help {
		usage()
		return exitSuccess
	}

	cfg := segment.Config{
		MinCoverage:     *minCoverage,
		MinBaseQual:     *minBaseQual,
		MinSegmentSize:  *minSegmentSize,
		MaxSegmentSize:  *maxSegmentSize,
		PValueThreshold: *pValue,
		DataRatio:       *dataRatio,
	}

	args := flag.Args()
	isMpileup := *mpileupMode != ""

	var normalPath, tumorPath, mpileupPath, outputBase string
	if isMpileup {
		if len(args) < 1 {
			usage()
			return exitParamError
		}
		mpileupPath = args[0]
		outputBase = "output"
		if len(args) >= 2 {
			outputBase = args[1]
		}
	} else {
		if len(args) < 2 {
			usage()
			return exitParamError
		}
		normalPath, tumorPath = args[0], args[1]
		outputBase = "output"
		if len(args) >= 3 {
			outputBase = args[2]
		}
	}

	log.Printf("Min coverage:\t%d", cfg.MinCoverage)
	log.Printf("Min avg qual:\t%d", cfg.MinBaseQual)
	log.Printf("P-value thresh:\t%g", cfg.PValueThreshold)

	emitter := segment.NewFileEmitter(outputBase+".copynumber", cfg.MinCoverage, cfg.DataRatio)
	emitter.TrackRatios = *verbose
	defer cleanup(emitter)

	seg := segment.New(cfg, emitter)

	var code int
	if isMpileup {
		code = runMpileup(mpileupPath, seg, *verbose)
	} else {
		code = runDualPileup(normalPath, tumorPath, seg, *naturalOrder, *verbose)
	}
	seg.Finish()

	if *verbose && emitter.Emitted > 0 {
		printSummary(emitter)
	}
	log.Printf("Segments emitted:\t%d", emitter.Emitted)

	return code
}

func runMpileup(path string, seg *segment.Segmenter, verbose bool) int {
	stream, err := pileup.OpenStream(path)
	if err != nil {
		log.Printf("Error opening mpileup input: %v", err)
		return exitIOError
	}
	defer stream.Close()

	if !stream.WaitReady(pileup.MaxPollAttempts, pileup.PollInterval) {
		log.Printf("Input file was not ready after %d 5-second cycles!", pileup.MaxPollAttempts)
		return exitInputNotReady
	}

	log.Println("Reading mpileup input...")
	reader := pileup.NewMpileupReader(stream)
	reader.Verbose = verbose

	for {
		rec, ok, err := reader.Next()
		if errors.Is(err, pileup.ErrTooManyParseErrors) {
			log.Printf("%v", err)
			return exitSuccess
		}
		if err != nil {
			log.Printf("%v", err)
			return exitIOError
		}
		if !ok {
			return exitSuccess
		}
		seg.Process(rec)
	}
}

func runDualPileup(normalPath, tumorPath string, seg *segment.Segmenter, naturalOrder, verbose bool) int {
	log.Printf("Normal Pileup: %s", normalPath)
	log.Printf("Tumor Pileup: %s", tumorPath)
	log.Println("NOTICE: while dual input files are still supported, a single mpileup file (normal-tumor) with --mpileup 1 is recommended.")

	coord, err := pileup.NewDualPileupCoordinator(normalPath, tumorPath)
	if errors.Is(err, pileup.ErrInputNotReady) {
		log.Printf("Input files were not ready after the poll budget expired.")
		return exitInputNotReady
	}
	if err != nil {
		log.Printf("Error opening pileup input: %v", err)
		return exitIOError
	}
	defer coord.Close()
	coord.NaturalOrder = naturalOrder
	coord.Verbose = verbose

	for {
		rec, ok, err := coord.Next()
		if err != nil {
			log.Printf("%v", err)
			return exitIOError
		}
		if !ok {
			break
		}
		seg.Process(rec)
	}

	if verbose {
		log.Printf("Tumor lines seen:\t%d", coord.TumorLinesSeen)
		log.Printf("Matched positions:\t%d", coord.Matched)
	}
	return exitSuccess
}

// printSummary renders an ASCII sparkline of emitted log2-ratios across the
// run, grouped by reporting order, as a --verbose debug aid.
func printSummary(e *segment.FileEmitter) {
	ratios := slices.Clone(e.Ratios)
	fmt.Fprintln(os.Stderr, "log2-ratio by segment:")
	fmt.Fprintln(os.Stderr, strings.TrimSpace(asciigraph.Plot(ratios, asciigraph.Height(8), asciigraph.Precision(2))))
}

func cleanup(e interface{ Close() error }) {
	err := e.Close()
	exception.PanicOnErr(err)
}
