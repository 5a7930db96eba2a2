// Package intern provides append-only interners for identifiers, qualified
// paths and structural types. Equality on an index implies equality of the
// interned content; lookups never invalidate previously issued indices.
package intern

import "strings"

// StringIdx identifies an interned string. Indices are dense and start at
// zero: the first string interned gets index 0, so the zero value is a
// valid index and never stands for "none".
type StringIdx int32

// Strings interns identifier and literal text into dense indices.
type Strings struct {
	values []string
	lookup map[string]StringIdx
}

// NewStrings creates an empty string interner.
func NewStrings() *Strings {
	return &Strings{lookup: make(map[string]StringIdx)}
}

// Intern returns the index for s, allocating a new one if s was not seen
// before.
func (p *Strings) Intern(s string) StringIdx {
	if idx, ok := p.lookup[s]; ok {
		return idx
	}

	idx := StringIdx(len(p.values))
	p.values = append(p.values, s)
	p.lookup[s] = idx

	return idx
}

// Lookup returns the original text for idx. Panics if idx is out of range,
// matching the arena-ownership convention used throughout this module: an
// index handed out by this type is always valid for its lifetime, so an
// out-of-range index is a programmer error, not a recoverable condition.
func (p *Strings) Lookup(idx StringIdx) string {
	return p.values[idx]
}

// Len returns the number of distinct strings interned so far.
func (p *Strings) Len() int {
	return len(p.values)
}

// PathIdx identifies an interned qualified path.
type PathIdx int32

// WildcardSegment is the reserved string content of a wildcard path segment
// ("use foo::*;"). It is interned like any other string.
const WildcardSegment = "*"

// Paths interns ordered sequences of string indices. A path of length one is
// an unqualified name; the empty path denotes the root module.
type Paths struct {
	strings *Strings
	paths   [][]StringIdx
	lookup  map[string]PathIdx
}

// NewPaths creates an empty path interner backed by the given string
// interner (path segments are themselves interned strings).
func NewPaths(strings *Strings) *Paths {
	return &Paths{strings: strings, lookup: make(map[string]PathIdx)}
}

// Intern returns the index for the given ordered segment list, allocating a
// new one if this exact sequence was not seen before.
func (p *Paths) Intern(segments []StringIdx) PathIdx {
	key := p.key(segments)
	if idx, ok := p.lookup[key]; ok {
		return idx
	}

	// Copy defensively: callers often build segments in a scratch slice
	// they intend to reuse.
	owned := make([]StringIdx, len(segments))
	copy(owned, segments)

	idx := PathIdx(len(p.paths))
	p.paths = append(p.paths, owned)
	p.lookup[key] = idx

	return idx
}

// InternNames interns a path given as plain strings, interning each segment
// into the backing string interner first.
func (p *Paths) InternNames(names ...string) PathIdx {
	segments := make([]StringIdx, len(names))
	for i, n := range names {
		segments[i] = p.strings.Intern(n)
	}

	return p.Intern(segments)
}

// Segments returns the segment indices making up idx.
func (p *Paths) Segments(idx PathIdx) []StringIdx {
	return p.paths[idx]
}

// Len returns the number of segments in idx.
func (p *Paths) Len(idx PathIdx) int {
	return len(p.paths[idx])
}

// String renders idx using "::" as the segment separator.
func (p *Paths) String(idx PathIdx) string {
	segments := p.paths[idx]
	parts := make([]string, len(segments))

	for i, s := range segments {
		parts[i] = p.strings.Lookup(s)
	}

	return strings.Join(parts, "::")
}

// Extend returns the path formed by appending name as a new final segment
// of base.
func (p *Paths) Extend(base PathIdx, name string) PathIdx {
	seg := p.strings.Intern(name)
	nsegs := append(append([]StringIdx{}, p.paths[base]...), seg)

	return p.Intern(nsegs)
}

// HasWildcard reports whether any segment of idx is the wildcard segment.
func (p *Paths) HasWildcard(idx PathIdx) bool {
	wc := p.strings.Intern(WildcardSegment)
	for _, s := range p.paths[idx] {
		if s == wc {
			return true
		}
	}

	return false
}

// MatchesWildcard reports whether candidate (a concrete path with no
// wildcard segments) is matched by pattern (a path that may contain
// wildcard segments): same length, every non-wildcard segment equal at
// the same position.
func (p *Paths) MatchesWildcard(pattern, candidate PathIdx) bool {
	ps, cs := p.paths[pattern], p.paths[candidate]
	if len(ps) != len(cs) {
		return false
	}

	wc := p.strings.Intern(WildcardSegment)
	for i, seg := range ps {
		if seg != wc && seg != cs[i] {
			return false
		}
	}

	return true
}

func (p *Paths) key(segments []StringIdx) string {
	var b strings.Builder

	for i, s := range segments {
		if i > 0 {
			b.WriteByte(0)
		}

		// Segment indices fit comfortably in a handful of decimal digits;
		// building a byte-separated key avoids accidental collisions
		// between e.g. [1,23] and [12,3].
		b.WriteString(itoa(int32(s)))
	}

	return b.String()
}

func itoa(v int32) string {
	if v == 0 {
		return "0"
	}

	neg := v < 0
	if neg {
		v = -v
	}

	var buf [12]byte

	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}
