package parser

import (
	"fmt"
	"strings"
)

// Usage lists the syntax of every command, keyed by its leading keyword.
var Usage = map[string]string{
	"start":      "start <template> [group: N] [affix: id [and: id]*] [elite]",
	"attack":     "<attack|heavy|interrupt|spell|curse|sweep> [at: target]",
	"defend":     "defend | pass",
	"status":     "status",
	"save":       "save [slot]",
	"load":       "load [slot]",
	"slots":      "slots",
	"difficulty": "difficulty <easy|normal|hard|dynamic>",
	"area":       "area <id>",
	"help":       "help [command]",
}

var usageAlias = map[string]string{
	"heavy": "attack", "interrupt": "attack", "spell": "attack", "curse": "attack", "sweep": "attack",
	"pass": "defend",
}

// UsageFor returns the syntax line for cmd and whether it is known.
func UsageFor(cmd string) (string, bool) {
	cmd = strings.ToLower(cmd)
	if a, ok := usageAlias[cmd]; ok {
		cmd = a
	}
	u, ok := Usage[cmd]
	return u, ok
}

// MapError takes a raw input and a participle error, and returns a human-friendly guidance message.
func MapError(input string, err error) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("I wasn't able to understand your command")
	}

	cmd := strings.Fields(strings.ToLower(input))[0]
	if u, ok := UsageFor(cmd); ok {
		return fmt.Errorf("The command %s must be: %s", cmd, u)
	}
	return fmt.Errorf("I wasn't able to understand your command")
}
