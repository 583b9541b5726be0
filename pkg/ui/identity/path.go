// Package identity computes the positional keys that give view nodes a
// durable identity across render passes.
//
// A Path is built purely from tree shape while the renderer walks the view
// tree: every child contributes one Segment made of an explicit tag, its
// sibling index and a branch marker. Two nodes are the same logical
// component iff their paths are equal.
package identity

import (
	"strconv"
	"strings"
)

// BranchKind distinguishes conditional and keyed positions.
type BranchKind uint8

const (
	BranchNone BranchKind = iota
	BranchSome
	BranchFirst
	BranchSecond
	BranchKey
)

// Branch marks which side of a conditional a node sits on, or the key of a
// keyed loop item.
type Branch struct {
	Kind BranchKind
	Key  string
}

// Predefined branches.
var (
	None   = Branch{Kind: BranchNone}
	Some   = Branch{Kind: BranchSome}
	First  = Branch{Kind: BranchFirst}
	Second = Branch{Kind: BranchSecond}
)

// Key returns the branch for a keyed loop item.
func Key(k string) Branch {
	return Branch{Kind: BranchKey, Key: k}
}

func (b Branch) String() string {
	switch b.Kind {
	case BranchSome:
		return "some"
	case BranchFirst:
		return "first"
	case BranchSecond:
		return "second"
	case BranchKey:
		return "key:" + b.Key
	default:
		return "none"
	}
}

// Segment is one step of a path.
type Segment struct {
	Tag    string
	Index  int
	Branch Branch
}

// Seg is shorthand for constructing a Segment.
func Seg(tag string, index int, branch Branch) Segment {
	return Segment{Tag: tag, Index: index, Branch: branch}
}

func (s Segment) String() string {
	return "(" + s.Tag + "," + strconv.Itoa(s.Index) + "," + s.Branch.String() + ")"
}

// Path is an ordered sequence of segments from the root. Paths are values:
// Child never aliases the receiver's backing array.
type Path []Segment

// Root is the empty path.
func Root() Path {
	return nil
}

// Child returns p extended by seg.
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// Parent returns p without its last segment. The parent of the root is the
// root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the final segment and whether there is one.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Equal reports whether p and q contain the same segments.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is an ancestor of p or p itself.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `/`, `\/`, `,`, `\,`)

// Key returns a string that is unique per path, suitable as a map key.
func (p Path) Key() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(keyEscaper.Replace(s.Tag))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(s.Index))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(int(s.Branch.Kind)))
		if s.Branch.Kind == BranchKey {
			b.WriteByte(',')
			b.WriteString(keyEscaper.Replace(s.Branch.Key))
		}
	}
	return b.String()
}

// String renders the path for logs, e.g. "/(VStack,0,none)/(Button,1,some)".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}
