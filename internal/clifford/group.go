package clifford

import (
	"fmt"
	"sync"

	"github.com/roach88/weft/internal/pattern"
)

// signedPauli is a Pauli letter with a sign, e.g. -Y.
type signedPauli struct {
	neg bool
	p   Gate // X, Y, or Z
}

// action is the conjugation action of a Clifford element on the Pauli
// generators: the signed images of X and Z. This determines the element
// exactly, modulo global phase.
type action struct {
	x, z signedPauli
}

var identityAction = action{
	x: signedPauli{p: X},
	z: signedPauli{p: Z},
}

// applyGate conjugates a signed Pauli by a single generator.
// H: X<->Z, Y->-Y.  S: X->Y, Y->-X, Z->Z.  Z: X->-X, Y->-Y, Z->Z.
func applyGate(g Gate, sp signedPauli) signedPauli {
	switch g {
	case H:
		switch sp.p {
		case X:
			return signedPauli{neg: sp.neg, p: Z}
		case Z:
			return signedPauli{neg: sp.neg, p: X}
		case Y:
			return signedPauli{neg: !sp.neg, p: Y}
		}
	case S:
		switch sp.p {
		case X:
			return signedPauli{neg: sp.neg, p: Y}
		case Y:
			return signedPauli{neg: !sp.neg, p: X}
		case Z:
			return sp
		}
	case Z:
		switch sp.p {
		case X:
			return signedPauli{neg: !sp.neg, p: X}
		case Y:
			return signedPauli{neg: !sp.neg, p: Y}
		case Z:
			return sp
		}
	}
	panic(fmt.Sprintf("clifford: no conjugation rule for gate %v on %v", g, sp.p))
}

// wordAction computes the conjugation action of a gate word applied
// left-to-right.
func wordAction(word []Gate) action {
	a := identityAction
	for _, g := range word {
		a.x = applyGate(g, a.x)
		a.z = applyGate(g, a.z)
	}
	return a
}

// actionIndex maps each element's action to its table index, built once
// from the decomposition table itself.
var actionIndex = sync.OnceValue(func() map[action]int {
	m := make(map[action]int, pattern.CliffordOrder)
	for i, word := range table {
		a := wordAction(word)
		if prev, dup := m[a]; dup {
			panic(fmt.Sprintf("clifford: table entries %d and %d denote the same element", prev, i))
		}
		m[a] = i
	}
	return m
})

// Compose returns the index of the element equivalent to applying element
// a first, then element b.
func Compose(a, b int) (int, error) {
	wa, err := Decompose(a)
	if err != nil {
		return 0, err
	}
	wb, err := Decompose(b)
	if err != nil {
		return 0, err
	}
	idx, ok := actionIndex()[wordAction(append(wa, wb...))]
	if !ok {
		// Unreachable: the action map is total over the group.
		return 0, fmt.Errorf("clifford: composition of %d and %d not in table", a, b)
	}
	return idx, nil
}

// Inverse returns the index of the group inverse of element i.
func Inverse(i int) (int, error) {
	if _, err := Decompose(i); err != nil {
		return 0, err
	}
	for j := 0; j < pattern.CliffordOrder; j++ {
		c, err := Compose(i, j)
		if err != nil {
			return 0, err
		}
		if c == 0 {
			return j, nil
		}
	}
	// Unreachable: every group element has an inverse.
	return 0, fmt.Errorf("clifford: no inverse found for %d", i)
}
