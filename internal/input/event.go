// Package input implements the Input Handlers of spec §4.10: one handler
// per concern (typing/IME/markdown shortcuts, keyboard navigation/editing,
// mouse-driven multi-block selection), each translating a native browser
// gesture into Command Engine calls routed through the editor.Controller
// and the Compiler's DOM bridge. Event is shaped directly after the
// teacher's view/live Event (Name/Values/Form/.Get), generalized here from
// HTML form submissions to the editor's own gesture vocabulary.
package input

import (
	"net/url"
	"strconv"
)

// Event is one native gesture relayed from the host's JS shim: a keydown,
// an input/compositionend, or a mouse gesture, carrying whatever fields
// that gesture needs. Get gives Values precedence over Form; GetAll
// prefers Form.
type Event struct {
	Name   string
	Target string // block id the gesture originated on, when known
	Values map[string]string
	Form   url.Values
	Key    string
	Meta   Meta
}

// Meta carries the modifier-key state of a keyboard or mouse event.
type Meta struct {
	ShiftKey bool
	CtrlKey  bool
	MetaKey  bool
	AltKey   bool
}

// CommandHeld reports whether either platform's "command" modifier
// (Ctrl on Windows/Linux, Cmd on macOS) is held — §4.10 repeatedly says
// "Ctrl/Cmd" for the same shortcut.
func (m Meta) CommandHeld() bool { return m.CtrlKey || m.MetaKey }

// Get returns Values[key], falling back to Form.Get(key).
func (e Event) Get(key string) string {
	if v, ok := e.Values[key]; ok {
		return v
	}
	if e.Form != nil {
		return e.Form.Get(key)
	}
	return ""
}

// GetAll returns every value for key from Form, or a single-element slice
// from Values if present there instead.
func (e Event) GetAll(key string) []string {
	if e.Form != nil {
		if vs := e.Form[key]; len(vs) > 0 {
			return vs
		}
	}
	if v, ok := e.Values[key]; ok {
		return []string{v}
	}
	return nil
}

// Has reports whether key is present in either Values or Form.
func (e Event) Has(key string) bool {
	if _, ok := e.Values[key]; ok {
		return true
	}
	if e.Form != nil {
		if _, ok := e.Form[key]; ok {
			return true
		}
	}
	return false
}

// GetInt parses key as an int, returning 0 if absent or invalid.
func (e Event) GetInt(key string) int {
	n, _ := strconv.Atoi(e.Get(key))
	return n
}

// GetFloat parses key as a float64, returning 0 if absent or invalid.
func (e Event) GetFloat(key string) float64 {
	f, _ := strconv.ParseFloat(e.Get(key), 64)
	return f
}

// GetBool parses key as a bool ("true"/"1" etc.), returning false if
// absent or invalid.
func (e Event) GetBool(key string) bool {
	b, _ := strconv.ParseBool(e.Get(key))
	return b
}
