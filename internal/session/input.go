package session

import (
	"strconv"
	"strings"
)

// shorthand maps single-key aliases to full commands.
var shorthand = map[string]string{
	"a": "attack",
	"h": "heavy",
	"i": "interrupt",
	"s": "spell",
	"c": "curse",
	"w": "sweep",
	"d": "defend",
	"?": "help",
}

// ExpandInput rewrites convenience forms into the command language before
// parsing. The DSL accepts:
//
//	<command> [<key>: <value> [and: <value>]*]*
//
// Examples:
//
//	"h 2"            → "heavy at: goblin_raider-3" (2nd living enemy)
//	"a at: 1"        → "attack at: goblin_raider-2"
//	"start bat group: 2" stays as typed
//
// A positional number after an action verb, or the value of "at:", is read as
// a 1-based index into living.
func ExpandInput(input string, living []string) string {
	tokens := strings.Fields(strings.TrimSpace(input))
	if len(tokens) == 0 {
		return ""
	}

	if full, ok := shorthand[strings.ToLower(tokens[0])]; ok {
		tokens[0] = full
	}
	if !isAction(tokens[0]) {
		return strings.Join(tokens, " ")
	}

	out := []string{tokens[0]}
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		switch {
		case strings.EqualFold(tok, "at:") && i+1 < len(tokens):
			out = append(out, "at:", resolveIndex(tokens[i+1], living))
			i++
		case i == 1 && !strings.HasSuffix(tok, ":"):
			out = append(out, "at:", resolveIndex(tok, living))
		default:
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}

func isAction(verb string) bool {
	switch strings.ToLower(verb) {
	case "attack", "heavy", "interrupt", "spell", "curse", "sweep":
		return true
	}
	return false
}

func resolveIndex(tok string, living []string) string {
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > len(living) {
		return tok
	}
	return living[n-1]
}
