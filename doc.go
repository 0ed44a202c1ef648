// Package keycalc implements the editing and evaluation core of a
// four-function pocket calculator.
//
// An Engine holds the text the user is composing one keystroke at a time,
// e.g. "12×3+10%". Keystrokes only ever produce well-formed buffers: a second
// operator replaces the first, a number never gets two decimal points, and
// clearing never goes below "0". Evaluating a buffer never fails loudly; the
// result is an Outcome which is Empty, an Error, or a Value rounded to twelve
// decimal places so that 0.1+0.2 shows as 0.3.
//
// Percent is a postfix operator on the number literal right before it:
// "200+10%" is 200 + 10/100, not 200 plus ten percent of 200.
package keycalc
