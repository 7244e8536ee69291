// Package compiler adapts external template compilers to the loader.
package compiler

import (
	"context"
	"sync"

	"github.com/phobologic/templateloader/internal/model"
)

// Compiler turns a template request into render code plus diagnostics.
// Template errors are reported in the Result; a returned error means the
// compiler itself could not run.
type Compiler interface {
	Compile(ctx context.Context, req *model.Request) (*model.Result, error)
}

// CodeFramer is implemented by compilers that can render source excerpts
// for ranged diagnostics.
type CodeFramer interface {
	CodeFrame(source string, start, end int) string
}

var (
	defaultOnce     sync.Once
	defaultCompiler *Node
)

// Default returns the shared default compiler. It is created on first use.
func Default() Compiler {
	defaultOnce.Do(func() {
		defaultCompiler = &Node{}
	})
	return defaultCompiler
}

// Select returns c, or Default when c is nil.
func Select(c Compiler) Compiler {
	if c != nil {
		return c
	}
	return Default()
}

// Compile runs c on req. Source ranges are requested unless the caller set
// outputSourceRange explicitly.
func Compile(ctx context.Context, c Compiler, req *model.Request) (*model.Result, error) {
	if _, set := req.CompilerOptions["outputSourceRange"]; !set {
		r := *req
		r.CompilerOptions = make(map[string]any, len(req.CompilerOptions)+1)
		for k, v := range req.CompilerOptions {
			r.CompilerOptions[k] = v
		}
		r.CompilerOptions["outputSourceRange"] = true
		req = &r
	}
	return c.Compile(ctx, req)
}
