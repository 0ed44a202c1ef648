package repl

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/zephyrtronium/keycalc"
)

func newRepl() (*Repl, *bytes.Buffer) {
	var out bytes.Buffer
	l, _ := test.NewNullLogger()
	return New(keycalc.NewEngine(), &out, l), &out
}

func TestLine(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		out   string
	}{
		{"preview", []string{"7+3"}, "7+3  (10)\n"},
		{"commit", []string{"7+3", ""}, "7+3  (10)\n  7+3 =\n10\n"},
		{"equals", []string{"7+3="}, "  7+3 =\n10\n"},
		{"star", []string{"6*7"}, "6×7  (42)\n"},
		{"backspace", []string{"12c"}, "1\n"},
		{"percent", []string{"50%", ""}, "50%  (0.5)\n  50% =\n0.5\n"},
		{"spaces", []string{" 1 + 2 "}, "1+2  (3)\n"},
		{"ignored", []string{"1x2"}, "12\n"},
		{"rejected", []string{"5/0", ""}, "5÷0\n! 0 outside domain of /\n5÷0\n"},
		{"ac", []string{"7+3", "", "ac"}, "7+3  (10)\n  7+3 =\n10\n0\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, out := newRepl()
			for _, l := range c.lines {
				assert.True(t, r.Line(l))
			}
			assert.Equal(t, c.out, out.String())
		})
	}
}

func TestQuit(t *testing.T) {
	r, out := newRepl()
	assert.True(t, r.Line("1"))
	out.Reset()
	assert.False(t, r.Line(":q"))
	assert.Empty(t, out.String())
	assert.False(t, r.Line("  :q "))
}
