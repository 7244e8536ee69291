// Package rewrite relocates asset loads in generated render code. Each
// matching call is replaced by a CDN URL string literal and the asset it
// named is reported to a collector.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/templateloader/internal/model"
	"github.com/phobologic/templateloader/internal/registry"
)

// ErrNoRegistry is returned when no registry is available for the assets
// discovered during a rewrite.
var ErrNoRegistry = errors.New("asset registry is not initialized")

// Edit replaces source[Start:End] with Text.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

// Result is the rewritten form of one generated module.
type Result struct {
	Source []byte
	Edits  []Edit // sorted by Start, non-overlapping
	Assets []model.Asset

	// HasErrors is set when the generated code did not parse cleanly.
	// Calls outside the broken regions are still rewritten.
	HasErrors bool
}

// Config controls a rewrite.
type Config struct {
	// Filename is the component file the code was generated from. Asset
	// specifiers resolve against its directory.
	Filename string
	// Prefix is prepended to the short asset name in the emitted URL.
	Prefix string
	// Rules is the rule table, tried in order. Nil selects DefaultRules.
	Rules []Rule
}

// Rewrite parses code and replaces every call matched by cfg.Rules, in
// document order. Calls nested inside a replaced call are dropped with it.
// Each relocated asset is added to reg, one entry per rewritten call site.
func Rewrite(ctx context.Context, parser *sitter.Parser, query *sitter.Query, code []byte, cfg Config, reg *registry.Registry) (*Result, error) {
	if reg == nil {
		return nil, ErrNoRegistry
	}
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules
	}

	res := &Result{Source: code}
	if len(code) == 0 {
		return res, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, code)
	if err != nil {
		return nil, fmt.Errorf("parsing generated code: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	res.HasErrors = root.HasError()

	calls := findCalls(query, root, code)
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Node.StartByte() < calls[j].Node.StartByte()
	})

	var covered uint32
	for _, call := range calls {
		if call.Node.StartByte() < covered {
			continue
		}
		for _, rule := range rules {
			spec, ok := rule.Match(call)
			if !ok {
				continue
			}
			asset := resolve(cfg.Filename, spec)
			reg.Add(asset)
			res.Assets = append(res.Assets, asset)
			res.Edits = append(res.Edits, Edit{
				Start: call.Node.StartByte(),
				End:   call.Node.EndByte(),
				Text:  quoteJS(cfg.Prefix + "/" + asset.Name),
			})
			covered = call.Node.EndByte()
			break
		}
	}

	return res, nil
}

func findCalls(query *sitter.Query, root *sitter.Node, source []byte) []Call {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, root)

	var calls []Call
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		match = qc.FilterPredicates(match, source)

		var call Call
		var args *sitter.Node
		for _, c := range match.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "call":
				call.Node = c.Node
			case "callee":
				call.Callee = c.Node
			case "arguments":
				args = c.Node
			}
		}
		if call.Node == nil || call.Callee == nil || args == nil {
			continue
		}
		call.Callee = unwrapParens(call.Callee)
		call.Optional = hasChildOfType(call.Node, "optional_chain")

		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			if arg.Type() == "comment" {
				continue
			}
			call.Args = append(call.Args, arg)
		}
		call.source = source
		calls = append(calls, call)
	}
	return calls
}

func unwrapParens(n *sitter.Node) *sitter.Node {
	for n.Type() == "parenthesized_expression" && n.NamedChildCount() > 0 {
		inner := n.NamedChild(0)
		if inner == nil {
			break
		}
		n = inner
	}
	return n
}

func hasChildOfType(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

// resolve joins spec onto the directory of filename and derives the short
// name from the last two segments of the result.
func resolve(filename, spec string) model.Asset {
	resolved := path.Join(filepath.ToSlash(filename), "../"+spec)
	segments := strings.Split(resolved, "/")
	if len(segments) > 2 {
		segments = segments[len(segments)-2:]
	}
	return model.Asset{
		Path: filepath.FromSlash(resolved),
		Name: strings.Join(segments, "/"),
	}
}

// quoteJS returns s as a double-quoted JavaScript string literal.
func quoteJS(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
