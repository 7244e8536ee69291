// Package model defines core data structures for templateloader.
package model

// Range is a half-open byte range into the template source.
type Range struct {
	Start int
	End   int
}

// Diagnostic is a single tip or error reported by a template compiler.
// Range is nil when the compiler did not report source positions.
type Diagnostic struct {
	Message string
	Range   *Range
}

// Request is the normalized input to a template compiler. It is built once
// per invocation by the options resolver and not modified afterwards.
type Request struct {
	Source     string
	Filename   string
	ID         string
	ScopeID    string // empty unless Scoped
	Scoped     bool
	Functional bool
	Comments   bool
	Server     bool
	Production bool

	OptimizeSSR bool
	Prettify    bool

	// TransformAssetURLs maps tag names to attributes whose values the
	// compiler turns into require calls. Nil selects the compiler default.
	TransformAssetURLs map[string][]string

	CompilerOptions  map[string]any
	TranspileOptions map[string]any
}

// OutputSourceRange reports whether diagnostics were requested with ranges.
func (r *Request) OutputSourceRange() bool {
	v, ok := r.CompilerOptions["outputSourceRange"].(bool)
	return ok && v
}

// Result is what a template compiler returns for one request.
type Result struct {
	Code   string
	Source string
	Tips   []Diagnostic
	Errors []Diagnostic
}

// Asset is a relocated asset reference discovered in generated code.
type Asset struct {
	Path string // resolved file path
	Name string // last two segments of Path
}

// Output is the product of one loader invocation.
type Output struct {
	Code     string
	Warnings []string
	Error    string // aggregate template error report, "" when none
	Assets   []Asset
}
