package keycalc

import (
	"strings"
	"unicode/utf8"
)

// Operators contains the operator glyphs which may appear in a buffer.
const Operators = "+-×÷%"

// BinaryOperators is the subset of Operators which need a right operand.
const BinaryOperators = "+-×÷"

// Zero is the buffer of a cleared engine.
const Zero = "0"

// EndsWithOperator returns whether the last rune of s is an operator glyph.
func EndsWithOperator(s string) bool {
	r, sz := utf8.DecodeLastRuneInString(s)
	if sz == 0 {
		return false
	}
	return strings.ContainsRune(Operators, r)
}

// LastOperatorIndex returns the byte index of the last operator glyph in s, or
// -1 if s contains no operator.
func LastOperatorIndex(s string) int {
	k := -1
	for _, op := range Operators {
		if i := strings.LastIndex(s, string(op)); i > k {
			k = i
		}
	}
	return k
}

// chunk returns the part of s following its last operator glyph, i.e. the
// number currently being typed.
func chunk(s string) string {
	k := LastOperatorIndex(s)
	if k < 0 {
		return s
	}
	_, sz := utf8.DecodeRuneInString(s[k:])
	return s[k+sz:]
}

// CanInsertDecimal returns whether the number at the end of s has no decimal
// point yet.
func CanInsertDecimal(s string) bool {
	return !strings.Contains(chunk(s), ".")
}

// Append returns the buffer resulting from typing tok at the end of s. tok is
// a single digit, a decimal point, or an operator glyph; anything else leaves
// s unchanged.
func Append(s, tok string) string {
	r, sz := utf8.DecodeRuneInString(tok)
	if sz == 0 || sz != len(tok) {
		return s
	}
	switch {
	case '0' <= r && r <= '9':
		if s == Zero {
			return tok
		}
		return s + tok
	case r == '.':
		if !CanInsertDecimal(s) {
			return s
		}
		if s == "" || EndsWithOperator(s) {
			s += "0"
		}
		return s + "."
	case strings.ContainsRune(Operators, r):
		if s == "" {
			return s
		}
		if EndsWithOperator(s) {
			// Only the latest operator counts.
			_, last := utf8.DecodeLastRuneInString(s)
			return s[:len(s)-last] + tok
		}
		return s + tok
	default:
		return s
	}
}

// Backspace returns s with its last rune removed. It never returns a buffer
// shorter than Zero.
func Backspace(s string) string {
	if utf8.RuneCountInString(s) <= 1 {
		return Zero
	}
	_, sz := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-sz]
}

// trimBinary strips trailing binary operators from s. A trailing percent is a
// complete operand, so it stays.
func trimBinary(s string) string {
	for {
		r, sz := utf8.DecodeLastRuneInString(s)
		if sz == 0 || !strings.ContainsRune(BinaryOperators, r) {
			return s
		}
		s = s[:len(s)-sz]
	}
}
