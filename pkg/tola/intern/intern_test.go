package intern

import (
	"testing"

	"github.com/tola-lang/tola/pkg/util/assert"
)

func TestStringsInternIdentity(t *testing.T) {
	s := NewStrings()
	a := s.Intern("foo")
	b := s.Intern("foo")
	c := s.Intern("bar")

	assert.Equal(t, a, b)
	assert.True(t, a != c)
	assert.Equal(t, "foo", s.Lookup(a))
}

func TestPathsInternIdentity(t *testing.T) {
	strs := NewStrings()
	paths := NewPaths(strs)

	p1 := paths.InternNames("std", "math", "sqrt")
	p2 := paths.InternNames("std", "math", "sqrt")
	p3 := paths.InternNames("std", "math", "cos")

	assert.Equal(t, p1, p2)
	assert.True(t, p1 != p3)
	assert.Equal(t, "std::math::sqrt", paths.String(p1))
}

func TestPathsWildcardMatch(t *testing.T) {
	strs := NewStrings()
	paths := NewPaths(strs)

	pattern := paths.InternNames("foo", "*")
	a := paths.InternNames("foo", "add")
	b := paths.InternNames("foo", "sub")
	c := paths.InternNames("bar", "add")
	d := paths.InternNames("foo", "bar", "baz")

	assert.True(t, paths.MatchesWildcard(pattern, a))
	assert.True(t, paths.MatchesWildcard(pattern, b))
	assert.False(t, paths.MatchesWildcard(pattern, c))
	assert.False(t, paths.MatchesWildcard(pattern, d))
}

func TestTypesUnify(t *testing.T) {
	types := NewTypes()

	u32 := types.Primitive(KindU32)
	unknown := types.Primitive(KindUnknown)
	intLit := types.Primitive(KindIntegerLiteral)
	boolean := types.Primitive(KindBoolean)

	if got, ok := types.Unify(unknown, u32); !ok || got != u32 {
		t.Fatalf("expected unify(unknown, u32) = u32, got %v ok=%v", got, ok)
	}

	if got, ok := types.Unify(intLit, u32); !ok || got != u32 {
		t.Fatalf("expected literal/sized unify to u32, got %v ok=%v", got, ok)
	}

	if _, ok := types.Unify(boolean, u32); ok {
		t.Fatalf("expected unify(bool, u32) to fail")
	}
}

func TestTypesPointerAndStructInterning(t *testing.T) {
	strs := NewStrings()
	paths := NewPaths(strs)
	types := NewTypes()

	u8 := types.Primitive(KindU8)
	p1 := types.Pointer(true, u8)
	p2 := types.Pointer(true, u8)
	p3 := types.Pointer(false, u8)

	assert.Equal(t, p1, p2)
	assert.True(t, p1 != p3)

	sp := paths.InternNames("foo", "Bar")
	s1 := types.Struct(sp)
	s2 := types.Struct(sp)

	assert.Equal(t, s1, s2)
}
