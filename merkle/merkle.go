// Package merkle implements a binary Merkle tree over an ordered leaf
// list (C3): root computation, inclusion-proof generation, and fail-closed
// proof verification.
//
// Grounded on the portable Merkle receipt pattern (leaf + ordered sibling
// path + position, recompute and compare) so a proof can be independently
// re-verified without trusting whoever produced it.
package merkle

import "crypto/sha256"

// Position names which side of the running hash a sibling sits on.
type Position string

const (
	Left  Position = "left"
	Right Position = "right"
)

// Sibling is one step of an inclusion proof's path to the root.
type Sibling struct {
	Hash     string   `json:"hash"`
	Position Position `json:"position"`
}

// Proof is a self-contained inclusion proof for one leaf of a committed
// leaf list.
type Proof struct {
	Root      string    `json:"root"`
	Leaf      string    `json:"leaf"`
	LeafIndex int       `json:"leafIndex"`
	Siblings  []Sibling `json:"siblings"`
}

func hashLeaf(b []byte) string {
	sum := sha256.Sum256(b)
	return hexEncode(sum[:])
}

func hashNode(left, right string) string {
	h := sha256.New()
	h.Write(mustDecode(left))
	h.Write(mustDecode(right))
	return hexEncode(h.Sum(nil))
}

// emptyRoot is the root of the empty leaf list: sha256("empty").
func emptyRoot() string {
	sum := sha256.Sum256([]byte("empty"))
	return hexEncode(sum[:])
}

// levels returns the leaf-hash level and every internal level above it,
// levels[0] is leaf hashes, levels[len-1] is the single root hash.
func levels(leaves [][]byte) [][]string {
	if len(leaves) == 0 {
		return [][]string{{emptyRoot()}}
	}
	level := make([]string, len(leaves))
	for i, l := range leaves {
		level[i] = hashLeaf(l)
	}
	all := [][]string{level}
	for len(level) > 1 {
		var next []string
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, hashNode(level[i], level[i+1]))
			} else {
				// Odd count: duplicate the last node as its own sibling.
				next = append(next, hashNode(level[i], level[i]))
			}
		}
		all = append(all, next)
		level = next
	}
	return all
}

// Root returns the Merkle root of leaves. An empty list yields
// sha256("empty").
func Root(leaves [][]byte) string {
	all := levels(leaves)
	top := all[len(all)-1]
	return top[0]
}

// GenerateProof builds an inclusion proof for leaves[index].
func GenerateProof(leaves [][]byte, index int) (Proof, error) {
	if index < 0 || index >= len(leaves) {
		return Proof{}, ErrIndexOutOfRange
	}
	all := levels(leaves)
	proof := Proof{
		Root:      all[len(all)-1][0],
		Leaf:      hashLeaf(leaves[index]),
		LeafIndex: index,
	}

	idx := index
	for lvl := 0; lvl < len(all)-1; lvl++ {
		level := all[lvl]
		var siblingIdx int
		var pos Position
		if idx%2 == 0 {
			pos = Right
			if idx+1 < len(level) {
				siblingIdx = idx + 1
			} else {
				siblingIdx = idx // duplicated odd node
			}
		} else {
			pos = Left
			siblingIdx = idx - 1
		}
		proof.Siblings = append(proof.Siblings, Sibling{Hash: level[siblingIdx], Position: pos})
		idx /= 2
	}
	return proof, nil
}

// VerifyProof recomputes the root by folding siblings in order and checks
// it against the committed root. It never panics: a malformed proof
// simply fails to verify.
func VerifyProof(p Proof) bool {
	current := p.Leaf
	for _, s := range p.Siblings {
		switch s.Position {
		case Left:
			current = hashNode(s.Hash, current)
		case Right:
			current = hashNode(current, s.Hash)
		default:
			return false
		}
	}
	return current == p.Root
}
