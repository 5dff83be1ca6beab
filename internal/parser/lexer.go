package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer maps the raw string tokens out for our AST definitions.
// Identifiers may carry dashes so spawned enemy ids like goblin_raider-2 stay one token.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(?:start|group|affix|and|elite|attack|heavy|interrupt|spell|curse|sweep|at|defend|pass|status|save|load|slots|difficulty|area|help)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][\w-]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// Build creates our parser based on the struct tags in `ast.go`
func Build() *participle.Parser[Command] {
	return participle.MustBuild[Command](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace"),
		participle.CaseInsensitive("Keyword"),
	)
}
