package keycalc

// keyGlyphs maps keyboard operator keys to display glyphs.
var keyGlyphs = map[string]string{
	"*": "×",
	"/": "÷",
	"+": "+",
	"-": "-",
	"%": "%",
}

// CommitKey returns whether Press commits for key.
func CommitKey(key string) bool {
	return key == "Enter" || key == "="
}

// Press handles a keyboard key, named as in browser KeyboardEvent.key values.
// handled reports whether the key means anything to a calculator. ok is false
// only when the key committed and the commit was rejected, which callers
// usually show by flashing the display.
func (e *Engine) Press(key string) (handled, ok bool) {
	if CommitKey(key) {
		return true, e.Commit()
	}
	switch key {
	case "c", "C", "Backspace":
		e.Clear(ClearBackspace)
		return true, true
	case "Escape", "Delete":
		e.Clear(ClearAll)
		return true, true
	case ".":
		e.Append(".")
		return true, true
	}
	if len(key) == 1 && '0' <= key[0] && key[0] <= '9' {
		e.Append(key)
		return true, true
	}
	if g, found := keyGlyphs[key]; found {
		e.Append(g)
		return true, true
	}
	return false, true
}

// Button handles an on-screen button. action is "ac", "c", or "equals" for the
// control buttons and empty for the others, which carry their token in value.
func (e *Engine) Button(action, value string) (handled, ok bool) {
	switch action {
	case "ac":
		e.Clear(ClearAll)
		return true, true
	case "c":
		e.Clear(ClearBackspace)
		return true, true
	case "equals":
		return true, e.Commit()
	}
	if value == "" {
		return false, true
	}
	switch value {
	case "*":
		value = "×"
	case "/":
		value = "÷"
	}
	e.Append(value)
	return true, true
}
