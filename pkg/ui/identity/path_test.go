package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBranchString(t *testing.T) {
	tests := []struct {
		branch Branch
		want   string
	}{
		{None, "none"},
		{Some, "some"},
		{First, "first"},
		{Second, "second"},
		{Key("a/b"), "key:a/b"},
		{Branch{}, "none"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.branch.String())
	}
}

func TestPath_ChildDoesNotAlias(t *testing.T) {
	base := Root().Child(Seg("VStack", 0, None))
	a := base.Child(Seg("Text", 0, None))
	b := base.Child(Seg("Text", 1, None))

	assert.Len(t, base, 1)
	assert.Equal(t, 0, a[1].Index)
	assert.Equal(t, 1, b[1].Index)
	assert.False(t, a.Equal(b))
	assert.True(t, a.Parent().Equal(base))
	assert.True(t, a.HasPrefix(base))
	assert.False(t, base.HasPrefix(a))
}

func TestPath_EqualShapeEqualKey(t *testing.T) {
	build := func() Path {
		return Root().
			Child(Seg("Group", 0, None)).
			Child(Seg("Optional", 1, Some)).
			Child(Seg("Row", 2, Key("user-7")))
	}

	p, q := build(), build()

	assert.True(t, p.Equal(q))
	assert.Equal(t, p.Key(), q.Key())
	assert.Equal(t, "/(Group,0,none)/(Optional,1,some)/(Row,2,key:user-7)", p.String())
}

func TestPath_KeysDistinguishSegments(t *testing.T) {
	paths := []Path{
		Root(),
		Root().Child(Seg("a", 0, None)),
		Root().Child(Seg("a", 0, Some)),
		Root().Child(Seg("a", 1, None)),
		Root().Child(Seg("a,0", 0, None)),
		Root().Child(Seg("a", 0, Key(""))),
		Root().Child(Seg("a", 0, Key("x/y"))),
		Root().Child(Seg("a", 0, Key("x"))).Child(Seg("y", 0, None)),
		Root().Child(Seg("a/b", 0, None)),
		Root().Child(Seg("a", 0, None)).Child(Seg("b", 0, None)),
	}

	seen := make(map[string]int)
	for i, p := range paths {
		k := p.Key()
		if j, dup := seen[k]; dup {
			t.Fatalf("paths %d (%s) and %d (%s) share key %q", j, paths[j], i, p, k)
		}
		seen[k] = i
	}
}

func TestPath_RootHelpers(t *testing.T) {
	assert.Equal(t, "/", Root().String())
	assert.Nil(t, Root().Parent())
	_, ok := Root().Last()
	assert.False(t, ok)

	last, ok := Root().Child(Seg("x", 3, First)).Last()
	assert.True(t, ok)
	assert.Equal(t, Segment{Tag: "x", Index: 3, Branch: First}, last)
}
