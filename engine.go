package keycalc

// ClearKind selects how much Clear removes.
type ClearKind int8

const (
	// ClearAll resets the buffer to Zero and forgets the last result and
	// history.
	ClearAll ClearKind = iota
	// ClearBackspace removes the last rune of the buffer.
	ClearBackspace
)

// Engine is the editing state of one calculator. The zero value is not ready
// for use; create engines with NewEngine. It is not safe to use an Engine
// concurrently.
type Engine struct {
	ctx     *Context
	input   string
	last    string
	history string
	err     error
}

// NewEngine creates an engine with a buffer of Zero. The options configure
// evaluation as for NewContext.
func NewEngine(opts ...ContextOption) *Engine {
	return &Engine{
		ctx:   NewContext(opts...),
		input: Zero,
	}
}

// Append types a single digit, decimal point, or operator glyph. Any other
// token is ignored.
func (e *Engine) Append(tok string) {
	e.input = Append(e.input, tok)
}

// Clear removes content from the buffer.
func (e *Engine) Clear(kind ClearKind) {
	switch kind {
	case ClearAll:
		e.input = Zero
		e.last = ""
		e.history = ""
		e.err = nil
	case ClearBackspace:
		e.input = Backspace(e.input)
	}
}

// Commit evaluates the buffer. If the result is a value, it becomes both the
// last result and the new buffer, the history records the committed
// expression, and Commit returns true. Otherwise nothing changes, Err reports
// the cause (nil if the buffer was empty), and Commit returns false.
func (e *Engine) Commit() bool {
	out := e.ctx.Evaluate(e.input)
	if !out.Ok() {
		e.err = out.Err
		return false
	}
	e.err = nil
	e.last = out.String()
	e.history = e.input + " ="
	e.input = e.last
	return true
}

// Evaluate evaluates the buffer without changing it.
func (e *Engine) Evaluate() Outcome {
	return e.ctx.Evaluate(e.input)
}

// Peek returns the buffer and a preview of its value. The preview is empty
// when the buffer is empty or erroneous, or when it would only repeat the
// buffer.
func (e *Engine) Peek() (buffer, preview string) {
	out := e.ctx.Evaluate(e.input)
	if !out.Ok() {
		return e.input, ""
	}
	p := out.String()
	if p == e.input {
		return e.input, ""
	}
	return e.input, p
}

// Buffer returns the current buffer.
func (e *Engine) Buffer() string {
	return e.input
}

// LastResult returns the most recently committed result, or the empty string
// if nothing has been committed since the last full clear.
func (e *Engine) LastResult() string {
	return e.last
}

// History returns the last committed expression followed by " =".
func (e *Engine) History() string {
	return e.history
}

// Err returns the reason the most recent commit was rejected, if any.
func (e *Engine) Err() error {
	return e.err
}
