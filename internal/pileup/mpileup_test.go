package pileup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeMpileupFile(t *testing.T, lines ...string) *Stream {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.mpileup")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
	s, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMpileupReaderNext(t *testing.T) {
	s := writeMpileupFile(t,
		"chr1\t100\ta\t30\t.....,,,,,\tFFFFFFFFFF\t30\t.....,,,,,\tFFFFFFFFFF",
	)
	r := NewMpileupReader(s)
	rec, ok, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a record")
	}
	if rec.Chrom != "chr1" || rec.Pos != 100 || rec.RefBase != 'A' {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.NormalRawDepth != 30 || rec.TumorRawDepth != 30 {
		t.Fatalf("unexpected depths: %+v", rec)
	}
	if len(rec.NormalQuals) != 10 || len(rec.TumorQuals) != 10 {
		t.Fatalf("unexpected quality strings: %+v", rec)
	}

	_, ok, err = r.Next()
	if err != nil {
		t.Fatalf("unexpected error at EOF: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false at EOF")
	}
}

func TestMpileupReaderSkipsUnderWidthRows(t *testing.T) {
	s := writeMpileupFile(t,
		"chr1\t1\tA",
		"chr1\t2\tA\t10\t.....\tFFFFF\t10\t.....\tFFFFF",
	)
	r := NewMpileupReader(s)
	rec, ok, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || rec.Pos != 2 {
		t.Fatalf("expected to skip the under-width row and return pos 2, got %+v ok=%v", rec, ok)
	}
}

func TestMpileupReaderAbortsAfterFiveParseErrors(t *testing.T) {
	lines := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		lines = append(lines, "chr1\tBAD\tA\t10\t.....\tFFFFF\t10\t.....\tFFFFF")
	}
	s := writeMpileupFile(t, lines...)
	r := NewMpileupReader(s)
	var err error
	for i := 0; i < 6; i++ {
		_, _, err = r.Next()
		if err != nil {
			break
		}
	}
	if !errors.Is(err, ErrTooManyParseErrors) {
		t.Fatalf("got err = %v, want ErrTooManyParseErrors", err)
	}
	if r.ParseErrors != maxParseErrors {
		t.Fatalf("ParseErrors = %d, want %d", r.ParseErrors, maxParseErrors)
	}
}
