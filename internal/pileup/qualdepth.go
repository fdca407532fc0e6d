package pileup

// QualityDepth counts the bases in a pileup quality string whose Phred score
// (ord(c) - 33) is at least minQ. It does not verify q's length against any
// reported raw depth; callers own that invariant.
func QualityDepth(q string, minQ int) int {
	depth := 0
	for i := 0; i < len(q); i++ {
		if int(q[i])-33 >= minQ {
			depth++
		}
	}
	return depth
}
