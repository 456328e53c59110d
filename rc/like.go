package rc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/ops"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// likePattern is a compiled SQL pattern: % matches any run of characters,
// _ exactly one, a backslash escapes the next character.
type likePattern struct {
	attr    schema.Attr
	pattern string

	re *regexp.Regexp
	// prefix is the literal text before the first wildcard.
	prefix string
	// anything is set for patterns made of % only.
	anything bool
}

func compileLike(attr schema.Attr, v any) (likePattern, error) {

	if err := checkAttr(attr); err != nil {
		return likePattern{}, err
	}
	if !attr.Type.IsString() {
		return likePattern{}, fmt.Errorf("%w: %s", ErrStringOnly, attr.String())
	}
	lit, err := schema.LiteralOf(attr.Type, v)
	if err != nil {
		return likePattern{}, err
	}

	pattern := lit.Str
	expr := strings.Builder{}
	prefix := strings.Builder{}
	wildcard := false
	anything := pattern != ""

	expr.WriteString(`(?s)^`)

	escaped := false
	for _, r := range pattern {
		if r != '%' || escaped {
			anything = false
		}

		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
			continue
		case r == '%':
			expr.WriteString(`.*`)
			wildcard = true
			continue
		case r == '_':
			expr.WriteString(`.`)
			wildcard = true
			continue
		}

		expr.WriteString(regexp.QuoteMeta(string(r)))
		// the regexp reads invalid utf-8 as U+FFFD, matching values need not
		// share bytes with the pattern past this point
		if r == utf8.RuneError {
			wildcard = true
		}
		if !wildcard {
			prefix.WriteRune(r)
		}
	}

	if escaped {
		// trailing backslash stands for itself
		expr.WriteString(regexp.QuoteMeta(`\`))
		if !wildcard {
			prefix.WriteRune('\\')
		}
	}

	expr.WriteString(`$`)

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return likePattern{}, fmt.Errorf("like pattern %q: %w", pattern, err)
	}

	return likePattern{
		attr:     attr,
		pattern:  pattern,
		re:       re,
		prefix:   prefix.String(),
		anything: anything,
	}, nil
}

func (p *likePattern) Attr() schema.Attr {
	return p.attr
}

func (p *likePattern) Pattern() string {
	return p.pattern
}

func (p *likePattern) Children() []Operator {
	return nil
}

func (p *likePattern) sealed() {}

// outsidePrefix reports whether no value in [Min, Max] can start with the prefix.
func (p *likePattern) outsidePrefix(stats schema.Stats) bool {
	if p.prefix == "" {
		return false
	}
	if stats.Max.Str < p.prefix {
		return true
	}
	return stats.Min.Str > p.prefix && !strings.HasPrefix(stats.Min.Str, p.prefix)
}

func (p *likePattern) format(name string) string {
	return fmt.Sprintf("%s(%s, %s)", name, p.attr.String(), strconv.Quote(p.pattern))
}

// Like matches string rows against a SQL pattern.
type Like struct {
	likePattern
}

func NewLike(attr schema.Attr, pattern any) (*Like, error) {
	p, err := compileLike(attr, pattern)
	if err != nil {
		return nil, err
	}
	return &Like{p}, nil
}

func (l *Like) Type() string {
	return TypeLike
}

func (l *Like) ApplyNot() Operator {
	return &NotLike{l.likePattern}
}

func (l *Like) DoOptimize() Operator {
	return l
}

func (l *Like) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || l.outsidePrefix(stats) {
		return schema.None
	}
	if l.anything {
		return complete(stats)
	}
	return schema.Some
}

func (l *Like) match(values *schema.PackValues, out []uint32) int {
	return ops.CompareValuesMatch(values.Strs, l.re.MatchString, out)
}

func (l *Like) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(l, seg)
}

func (l *Like) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(l, seg, packId)
}

func (l *Like) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(l, seg)
}

func (l *Like) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(l, seg, packId)
}

func (l *Like) String() string {
	return l.format(TypeLike)
}

// NotLike matches string rows not matching a SQL pattern.
type NotLike struct {
	likePattern
}

func NewNotLike(attr schema.Attr, pattern any) (*NotLike, error) {
	p, err := compileLike(attr, pattern)
	if err != nil {
		return nil, err
	}
	return &NotLike{p}, nil
}

func (n *NotLike) Type() string {
	return TypeNotLike
}

func (n *NotLike) ApplyNot() Operator {
	return &Like{n.likePattern}
}

func (n *NotLike) DoOptimize() Operator {
	return n
}

func (n *NotLike) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || n.anything {
		return schema.None
	}
	if n.outsidePrefix(stats) {
		return complete(stats)
	}
	return schema.Some
}

func (n *NotLike) match(values *schema.PackValues, out []uint32) int {
	return ops.CompareValuesMatch(values.Strs, func(s string) bool {
		return !n.re.MatchString(s)
	}, out)
}

func (n *NotLike) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(n, seg)
}

func (n *NotLike) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(n, seg, packId)
}

func (n *NotLike) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(n, seg)
}

func (n *NotLike) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(n, seg, packId)
}

func (n *NotLike) String() string {
	return n.format(TypeNotLike)
}
