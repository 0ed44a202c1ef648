package keycalc

import (
	"strconv"
	"strings"
)

// node is a node in the syntax tree of an expression. Unary nodes use only
// left.
type node struct {
	kind nodeKind
	// name is the literal text of a nodeNum.
	name        string
	left, right *node
}

type nodeKind int8

const (
	nodeNone nodeKind = iota

	nodeNum // literal
	nodeNeg // -left
	nodeAdd // left + right
	nodeSub // left - right
	nodeMul // left * right
	nodeDiv // left / right
	nodeNop // +left
)

// kinds describes how each node kind prints. sym is the evaluable operator and
// glyph the one shown on a calculator display.
var kinds = [...]struct {
	name, sym, glyph string
	unary            bool
}{
	nodeNone: {name: "None"},
	nodeNum:  {name: "Num"},
	nodeNeg:  {"Neg", "-", "-", true},
	nodeAdd:  {"Add", " + ", " + ", false},
	nodeSub:  {"Sub", " - ", " - ", false},
	nodeMul:  {"Mul", " * ", " × ", false},
	nodeDiv:  {"Div", " / ", " ÷ ", false},
	nodeNop:  {"Nop", "+", "+", true},
}

func (k nodeKind) valid() bool {
	return 0 <= k && int(k) < len(kinds)
}

func (k nodeKind) String() string {
	if !k.valid() {
		return "nodeKind(" + strconv.Itoa(int(k)) + ")"
	}
	return kinds[k].name
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false, false)
	return b.String()
}

// fmt writes n fully bracketed, alternating round and square brackets with
// depth. alt selects display glyphs.
func (n *node) fmt(b *strings.Builder, square, alt bool) {
	if !n.kind.valid() {
		panic("keycalc: invalid node kind " + n.kind.String() + " after writing " + b.String())
	}
	l, r := byte('('), byte(')')
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)

	k := kinds[n.kind]
	sym := k.sym
	if alt {
		sym = k.glyph
	}
	switch {
	case n.kind == nodeNone:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		if n.left != nil {
			n.left.fmt(b, square, alt)
		}
		b.WriteByte('#')
		if n.right != nil {
			n.right.fmt(b, square, alt)
		}
		b.WriteByte('$')
	case n.kind == nodeNum:
		b.WriteString(n.name)
	case k.unary:
		b.WriteString(sym)
		n.left.fmt(b, !square, alt)
	default:
		n.left.fmt(b, !square, alt)
		b.WriteString(sym)
		n.right.fmt(b, !square, alt)
	}
}
