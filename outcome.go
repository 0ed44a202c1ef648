package keycalc

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// OutcomeKind classifies the result of evaluating a buffer.
type OutcomeKind int8

const (
	// OutcomeEmpty means there was nothing to evaluate.
	OutcomeEmpty OutcomeKind = iota
	// OutcomeError means the buffer was malformed or its value is not finite.
	OutcomeError
	// OutcomeValue means the buffer evaluated to a finite number.
	OutcomeValue
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmpty:
		return "Empty"
	case OutcomeError:
		return "Error"
	case OutcomeValue:
		return "Value"
	default:
		return "OutcomeKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Outcome is the result of evaluating a buffer.
type Outcome struct {
	Kind OutcomeKind
	// Value is the rounded result when Kind is OutcomeValue.
	Value float64
	// Err is the cause when Kind is OutcomeError.
	Err error
}

// String formats the outcome the way a calculator display shows it: empty for
// OutcomeEmpty, "Error" for OutcomeError, and otherwise the value in plain
// decimal notation.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeEmpty:
		return ""
	case OutcomeError:
		return "Error"
	default:
		return FormatValue(o.Value)
	}
}

// Ok returns whether the outcome is a value.
func (o Outcome) Ok() bool {
	return o.Kind == OutcomeValue
}

// FormatValue formats a value as a buffer. The result never uses exponent
// notation, so it can always be evaluated again.
func FormatValue(v float64) string {
	if v == 0 {
		// No -0.
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var (
	percentRE = regexp.MustCompile(`(\d+(?:\.\d*)?)%`)
	glyphText = strings.NewReplacer("×", "*", "÷", "/")
)

// Translate converts a display buffer to evaluable text: × and ÷ become * and
// /, and each number literal followed by a percent sign n% becomes (n/100).
// The percent rewrite applies once; a percent sign not following a number is
// left in place.
func Translate(s string) string {
	t, _ := translate(s)
	return t
}

// translate is Translate which also returns, for each rune of the result, the
// column of the buffer rune it came from. The brackets and divisor of a
// percent rewrite belong to the number and the percent sign respectively.
func translate(s string) (string, []int) {
	s = glyphText.Replace(s)
	var b strings.Builder
	cols := make([]int, 0, len(s))
	col := 0
	copyRunes := func(t string) {
		for _, r := range t {
			col++
			cols = append(cols, col)
			b.WriteRune(r)
		}
	}
	insert := func(t string, at int) {
		for range t {
			cols = append(cols, at)
		}
		b.WriteString(t)
	}
	last := 0
	for _, m := range percentRE.FindAllStringSubmatchIndex(s, -1) {
		copyRunes(s[last:m[0]])
		insert("(", col+1)
		copyRunes(s[m[2]:m[3]])
		col++
		insert("/100)", col)
		last = m[1]
	}
	copyRunes(s[last:])
	return b.String(), cols
}

// ParseBuffer parses a display buffer as Evaluate does, ignoring trailing
// binary operators. Positions in errors are columns of the buffer.
func ParseBuffer(buffer string) (*Expr, error) {
	s := trimBinary(buffer)
	t, cols := translate(s)
	a, err := Parse(strings.NewReader(t))
	if err != nil {
		return nil, bufferPos(err, cols, utf8.RuneCountInString(s))
	}
	return a, nil
}

// bufferPos moves the position of an InputError from translated text to the
// buffer it came from. Positions past the end of the text stay past the end
// of the buffer, which has n runes.
func bufferPos(err error, cols []int, n int) error {
	at := func(c int) int {
		switch {
		case c < 1:
			return c
		case c <= len(cols):
			return cols[c-1]
		default:
			return n + c - len(cols)
		}
	}
	switch err := err.(type) {
	case *LexError:
		err.Col = at(err.Col)
	case *OperatorError:
		err.Col = at(err.Col)
	case *MissingOperatorError:
		err.Col = at(err.Col)
	case *BracketError:
		err.Col = at(err.Col)
	case *EmptyExpressionError:
		err.Col = at(err.Col)
	}
	return err
}

// Evaluate evaluates a display buffer in a new context with the given options.
func Evaluate(buffer string, opts ...ContextOption) Outcome {
	return NewContext(opts...).Evaluate(buffer)
}

// Evaluate evaluates a display buffer. Trailing binary operators are ignored.
// Evaluate never panics; every failure is reported as an OutcomeError.
func (ctx *Context) Evaluate(buffer string) (out Outcome) {
	s := trimBinary(buffer)
	if s == "" {
		return Outcome{Kind: OutcomeEmpty}
	}
	// Literals are cached for one buffer only.
	clear(ctx.nums)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ctx.stack = ctx.stack[:0]
		err, ok := r.(error)
		if !ok {
			err = errors.New(fmt.Sprint(r))
		}
		out = Outcome{Kind: OutcomeError, Err: err}
	}()
	a, err := ParseBuffer(s)
	if err != nil {
		return Outcome{Kind: OutcomeError, Err: err}
	}
	r := ctx.Eval(a)
	if r == nil {
		return Outcome{Kind: OutcomeError, Err: ctx.Err()}
	}
	if r.IsInf() {
		return Outcome{Kind: OutcomeError, Err: &RangeError{X: new(big.Float).Copy(r)}}
	}
	v := round(r, ctx.scale)
	if !finite(v) {
		return Outcome{Kind: OutcomeError, Err: &RangeError{X: new(big.Float).Copy(r)}}
	}
	return Outcome{Kind: OutcomeValue, Value: v}
}
