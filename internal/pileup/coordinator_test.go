package pileup

import (
	"os"
	"path/filepath"
	"testing"
)

func writePileupFile(t *testing.T, name string, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
	return path
}

func TestDualPileupCoordinatorMatchesAlignedPositions(t *testing.T) {
	normalPath := writePileupFile(t, "normal.pileup",
		"chr1\t100\tA\t20\t....................\tFFFFFFFFFFFFFFFFFFFF",
		"chr1\t101\tC\t20\t....................\tFFFFFFFFFFFFFFFFFFFF",
		"chr1\t102\tG\t20\t....................\tFFFFFFFFFFFFFFFFFFFF",
	)
	tumorPath := writePileupFile(t, "tumor.pileup",
		"chr1\t100\tA\t25\t.........................\tFFFFFFFFFFFFFFFFFFFFFFFFF",
		"chr1\t101\tC\t25\t.........................\tFFFFFFFFFFFFFFFFFFFFFFFFF",
		"chr1\t102\tG\t25\t.........................\tFFFFFFFFFFFFFFFFFFFFFFFFF",
	)

	c, err := NewDualPileupCoordinator(normalPath, tumorPath)
	if err != nil {
		t.Fatalf("NewDualPileupCoordinator: %v", err)
	}
	defer c.Close()

	var got []Record
	for {
		rec, ok, err := c.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, rec)
	}

	if len(got) != 3 {
		t.Fatalf("got %d matched records, want 3: %+v", len(got), got)
	}
	for i, pos := range []int{100, 101, 102} {
		if got[i].Pos != pos {
			t.Fatalf("record %d has pos %d, want %d", i, got[i].Pos, pos)
		}
		if got[i].NormalRawDepth != 20 || got[i].TumorRawDepth != 25 {
			t.Fatalf("record %d depths = %d/%d, want 20/25", i, got[i].NormalRawDepth, got[i].TumorRawDepth)
		}
	}
	if c.Matched != 3 {
		t.Fatalf("Matched = %d, want 3", c.Matched)
	}
}

func TestDualPileupCoordinatorSkipsNormalOnlyPositions(t *testing.T) {
	normalPath := writePileupFile(t, "normal.pileup",
		"chr1\t100\tA\t20\t....................\tFFFFFFFFFFFFFFFFFFFF",
		"chr1\t101\tC\t20\t....................\tFFFFFFFFFFFFFFFFFFFF",
		"chr1\t102\tG\t20\t....................\tFFFFFFFFFFFFFFFFFFFF",
	)
	tumorPath := writePileupFile(t, "tumor.pileup",
		"chr1\t100\tA\t25\t.........................\tFFFFFFFFFFFFFFFFFFFFFFFFF",
		"chr1\t102\tG\t25\t.........................\tFFFFFFFFFFFFFFFFFFFFFFFFF",
	)

	c, err := NewDualPileupCoordinator(normalPath, tumorPath)
	if err != nil {
		t.Fatalf("NewDualPileupCoordinator: %v", err)
	}
	defer c.Close()

	var positions []int
	for {
		rec, ok, err := c.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		positions = append(positions, rec.Pos)
	}
	if len(positions) != 2 || positions[0] != 100 || positions[1] != 102 {
		t.Fatalf("positions = %v, want [100 102]", positions)
	}
}

func TestInSortOrderNaturalVsLexicographic(t *testing.T) {
	c := &DualPileupCoordinator{}
	if c.inSortOrder("chr2", "chr10") {
		t.Fatalf("lexicographic order should treat \"chr2\" as sorting after \"chr10\" (byte '2' > '1')")
	}
	c.NaturalOrder = true
	if !c.inSortOrder("chr2", "chr10") {
		t.Fatalf("natural order should treat chr2 < chr10 numerically")
	}
}
