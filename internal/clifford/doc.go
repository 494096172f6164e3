// Package clifford provides the canonical decomposition table for the 24
// single-qubit Clifford group elements (modulo global phase) and a small
// symbolic group arithmetic used to verify it.
//
// DECOMPOSITION TABLE:
//
// Decompose maps an index in [0,24) to an ordered primitive gate list
// drawn from {H, S, Z}. Gates apply left-to-right, each consuming and
// replacing the current wire. Entry 0 is the empty list (identity).
//
// The index enumeration is fixed as follows: starting from the identity,
// words over the generators are explored breadth-first in gate order
// H, S, Z, and each previously unseen group element is assigned the next
// index. The element identity test is the conjugation action on the Pauli
// X and Z generators (a signed symplectic pair), which determines a
// Clifford element exactly, modulo global phase. This yields shortest
// decompositions and anchors index 1 = H, 2 = S, 3 = Z, 7 = S-dagger,
// 11 = X, 19 = Y.
//
// GROUP ARITHMETIC:
//
// Compose and Inverse operate on table indices through the same symbolic
// conjugation representation — no matrices, no numerics. They exist so the
// table can be proven total, injective, and inverse-consistent by tests,
// and so callers can cancel or fuse adjacent Clifford commands.
package clifford
