package rewrite

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/templateloader/internal/lang"
)

// Call is a call expression found in generated code.
type Call struct {
	Node   *sitter.Node
	Callee *sitter.Node   // parentheses around the callee are stripped
	Args   []*sitter.Node // comments excluded
	// Optional is set for optional calls such as f?.(x).
	Optional bool
	source   []byte
}

// Text returns the source text of n, which must belong to this call's tree.
func (c Call) Text(n *sitter.Node) string {
	return lang.NodeText(n, c.source)
}

// StringArg returns the value of argument i if it is a plain string literal.
func (c Call) StringArg(i int) (string, bool) {
	if i >= len(c.Args) {
		return "", false
	}
	return stringValue(c.Args[i], c.source)
}

// Rule maps one call shape to an asset specifier. Match returns the
// specifier and true when the call is an asset load it understands.
type Rule struct {
	Name  string
	Match func(Call) (string, bool)
}

// RequireRule matches require("<literal>") with a bare require identifier,
// parenthesized or not. Optional calls, computed arguments, template strings
// and aliased or member callees are left alone.
var RequireRule = Rule{
	Name: "require",
	Match: func(c Call) (string, bool) {
		if c.Optional || c.Callee.Type() != "identifier" || c.Text(c.Callee) != "require" {
			return "", false
		}
		return c.StringArg(0)
	},
}

// DefaultRules is the rule table used when Config.Rules is nil.
var DefaultRules = []Rule{RequireRule}

func stringValue(n *sitter.Node, source []byte) (string, bool) {
	if n.Type() != "string" {
		return "", false
	}
	var b strings.Builder
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		text := lang.NodeText(child, source)
		switch child.Type() {
		case "string_fragment":
			b.WriteString(text)
		case "escape_sequence":
			b.WriteString(unescape(text))
		default:
			return "", false
		}
	}
	return b.String(), true
}

// unescape decodes a single JavaScript escape sequence such as \n or \x41.
func unescape(seq string) string {
	if len(seq) < 2 {
		return seq
	}
	switch seq[1] {
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		if len(seq) == 2 {
			return "\x00"
		}
	case '\n', '\r':
		return ""
	case 'x', 'u':
		hex := strings.Trim(seq[2:], "{}")
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return string(rune(v))
		}
	}
	return seq[1:]
}
