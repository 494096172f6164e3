package clifford

import "github.com/roach88/weft/internal/pattern"

// Gate is a primitive single-qubit generator.
type Gate int

const (
	I Gate = iota
	X
	Y
	Z
	S
	Sdg
	H
)

// String returns the conventional lower-case gate name.
func (g Gate) String() string {
	switch g {
	case I:
		return "i"
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	case S:
		return "s"
	case Sdg:
		return "sdg"
	case H:
		return "h"
	default:
		return "?"
	}
}

// table holds the fixed decomposition for every Clifford index.
// See the package documentation for the enumeration rule. The ordering is
// load-bearing: tests rebuild the table from the group arithmetic and
// fail on any drift.
var table = [pattern.CliffordOrder][]Gate{
	0:  {},
	1:  {H},
	2:  {S},
	3:  {Z},
	4:  {H, S},
	5:  {H, Z},
	6:  {S, H},
	7:  {S, Z},
	8:  {Z, H},
	9:  {H, S, H},
	10: {H, S, Z},
	11: {H, Z, H},
	12: {S, H, S},
	13: {S, H, Z},
	14: {S, Z, H},
	15: {Z, H, S},
	16: {Z, H, Z},
	17: {H, S, H, Z},
	18: {H, Z, H, S},
	19: {H, Z, H, Z},
	20: {S, H, S, Z},
	21: {S, H, Z, H},
	22: {S, Z, H, Z},
	23: {Z, H, S, Z},
}

// Decompose returns the primitive gate sequence for the Clifford element
// index, applied left-to-right. The table is total over [0,24); any other
// index is an UnsupportedCliffordIndex error.
//
// The returned slice is a copy; callers may append to it freely.
func Decompose(index int) ([]Gate, error) {
	if index < 0 || index >= pattern.CliffordOrder {
		return nil, pattern.NewCliffordIndexError(-1, -1, index)
	}
	entry := table[index]
	out := make([]Gate, len(entry))
	copy(out, entry)
	return out, nil
}
