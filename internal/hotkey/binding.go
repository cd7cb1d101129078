package hotkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifier is a platform-neutral modifier bit
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

// modifierOrder fixes the order modifiers appear in normalized bindings
var modifierOrder = []Modifier{ModCtrl, ModAlt, ModShift, ModSuper}

var modifierByName = map[string]Modifier{
	"CTRL":    ModCtrl,
	"CONTROL": ModCtrl,
	"SHIFT":   ModShift,
	"ALT":     ModAlt,
	"OPTION":  ModAlt,
	"WIN":     ModSuper,
	"SUPER":   ModSuper,
	"META":    ModSuper,
	"CMD":     ModSuper,
	"COMMAND": ModSuper,
}

var namedKeys = map[string]string{
	"SPACE":  "SPACE",
	"TAB":    "TAB",
	"ENTER":  "ENTER",
	"RETURN": "ENTER",
	"ESC":    "ESCAPE",
	"ESCAPE": "ESCAPE",
	"DELETE": "DELETE",
	"LEFT":   "LEFT",
	"RIGHT":  "RIGHT",
	"UP":     "UP",
	"DOWN":   "DOWN",
}

func (m Modifier) String() string {
	switch m {
	case ModCtrl:
		return "Ctrl"
	case ModShift:
		return "Shift"
	case ModAlt:
		return "Alt"
	case ModSuper:
		return "Super"
	default:
		return "Mod"
	}
}

// Binding describes a parsed global hotkey.
// Construct only via ParseBinding to guarantee invariant consistency.
type Binding struct {
	modifiers  Modifier
	key        string
	normalized string
}

// Modifiers returns the modifier bitmask
func (b Binding) Modifiers() Modifier { return b.modifiers }

// Has reports whether mod is part of the binding
func (b Binding) Has(mod Modifier) bool { return b.modifiers&mod != 0 }

// Key returns the normalized key token: "A".."Z", "0".."9", "F1".."F24"
// or one of the named keys such as "SPACE".
func (b Binding) Key() string { return b.key }

// Normalized returns the canonical human-readable binding string
func (b Binding) Normalized() string { return b.normalized }

func (b Binding) String() string { return b.normalized }

// ParseBinding parses a binding like "Ctrl+Alt+1" or "Ctrl+Shift+F12".
// Modifier and key names are case-insensitive. A binding needs at least
// one modifier unless its key is a function key.
func ParseBinding(spec string) (Binding, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return Binding{}, fmt.Errorf("hotkey string is empty")
	}

	parts := strings.Split(raw, "+")
	var modifiers Modifier
	for _, token := range parts[:len(parts)-1] {
		name := strings.ToUpper(strings.TrimSpace(token))
		mod, ok := modifierByName[name]
		if !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q in hotkey %q", token, raw)
		}
		modifiers |= mod
	}

	key, err := parseKey(parts[len(parts)-1])
	if err != nil {
		return Binding{}, fmt.Errorf("%w in hotkey %q", err, raw)
	}

	if modifiers == 0 && !isFunctionKey(key) {
		return Binding{}, fmt.Errorf("at least one modifier is required: %q", raw)
	}

	var names []string
	for _, mod := range modifierOrder {
		if modifiers&mod != 0 {
			names = append(names, mod.String())
		}
	}
	names = append(names, key)

	return Binding{
		modifiers:  modifiers,
		key:        key,
		normalized: strings.Join(names, "+"),
	}, nil
}

func parseKey(raw string) (string, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return "", fmt.Errorf("missing key")
	}

	// Accept the "KeyA" / "Digit1" code names used by browser-style key maps
	switch {
	case len(token) == 4 && strings.HasPrefix(token, "KEY"):
		token = token[3:]
	case len(token) == 6 && strings.HasPrefix(token, "DIGIT"):
		token = token[5:]
	}

	if len(token) == 1 {
		ch := token[0]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			return token, nil
		}
	}
	if name, ok := namedKeys[token]; ok {
		return name, nil
	}
	if isFunctionKey(token) {
		return token, nil
	}
	return "", fmt.Errorf("unknown key %q", raw)
}

func isFunctionKey(token string) bool {
	if len(token) < 2 || token[0] != 'F' {
		return false
	}
	n, err := strconv.Atoi(token[1:])
	return err == nil && n >= 1 && n <= 24 && strconv.Itoa(n) == token[1:]
}
