// Package loader runs the template pipeline: option resolution, template
// compilation, diagnostics, asset rewriting and module emission.
package loader

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/templateloader/internal/compiler"
	"github.com/phobologic/templateloader/internal/diag"
	"github.com/phobologic/templateloader/internal/emit"
	"github.com/phobologic/templateloader/internal/lang"
	"github.com/phobologic/templateloader/internal/model"
	"github.com/phobologic/templateloader/internal/options"
	"github.com/phobologic/templateloader/internal/registry"
	"github.com/phobologic/templateloader/internal/rewrite"
)

// Loader compiles templates into render modules. A Loader owns a parser and
// must not be shared between goroutines.
type Loader struct {
	parser *sitter.Parser
	query  *sitter.Query
}

// New returns a Loader with its own JavaScript parser.
func New() (*Loader, error) {
	l := lang.Languages[lang.JavaScript]
	q, err := l.GetQuery()
	if err != nil {
		return nil, fmt.Errorf("loading call query: %w", err)
	}
	return &Loader{parser: l.NewParser(), query: q}, nil
}

// Load compiles source and returns the emitted module.
//
// Input errors, compiler failures and a nil registry abort the invocation
// with an error. Template errors do not: they are reported in Output.Error
// and the module is still emitted from whatever code the compiler produced.
// Every relocated asset is added to reg and also returned in Output.Assets.
// With opts.Normalize set the module is reprinted by esbuild; a failed
// reprint becomes a warning.
func (l *Loader) Load(ctx context.Context, source string, lctx options.Context, opts *options.Options, reg *registry.Registry) (*model.Output, error) {
	if opts == nil {
		opts = &options.Options{}
	}

	req, err := options.Resolve(lctx, source, opts)
	if err != nil {
		return nil, err
	}

	tc := compiler.Select(opts.Compiler)
	result, err := compiler.Compile(ctx, tc, req)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", req.Filename, err)
	}

	framer, _ := tc.(compiler.CodeFramer)
	report := diag.Collect(req, result, framer)

	res, err := rewrite.Rewrite(ctx, l.parser, l.query, []byte(result.Code), rewrite.Config{
		Filename: req.Filename,
		Prefix:   opts.Prefix(),
	}, reg)
	if err != nil {
		return nil, fmt.Errorf("rewriting %s: %w", req.Filename, err)
	}

	code := emit.Module(res)
	if opts.Normalize {
		// A module esbuild cannot reprint is still emitted as spliced.
		if n, err := emit.Normalize(code); err != nil {
			report.Warnings = append(report.Warnings, err.Error())
		} else {
			code = n
		}
	}

	return &model.Output{
		Code:     code,
		Warnings: report.Warnings,
		Error:    report.Error,
		Assets:   res.Assets,
	}, nil
}
