// Package options resolves loader options and invocation context into a
// compiler request.
package options

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/phobologic/templateloader/internal/compiler"
)

// DefaultCDNPrefix is the URL prefix written into rewritten asset references
// when no other prefix is configured. The packaging stage substitutes the
// real bucket URL for it.
const DefaultCDNPrefix = "七牛云路径"

// Options are the loader options. The zero value is valid and selects every
// default.
type Options struct {
	// Compiler overrides the default template compiler.
	Compiler compiler.Compiler `yaml:"-"`

	// CompilerOptions are merged over {outputSourceRange: true}. The
	// scopeId and comments keys are always taken from the resource query.
	CompilerOptions map[string]any `yaml:"compilerOptions,omitempty"`

	// TranspileOptions are handed to the render-code transpiler unchanged.
	TranspileOptions map[string]any `yaml:"transpileOptions,omitempty"`

	// TransformAssetURLs maps tags to attributes rewritten into require
	// calls. Nil keeps the compiler's default table.
	TransformAssetURLs map[string][]string `yaml:"transformAssetUrls,omitempty"`

	ProductionMode bool `yaml:"productionMode,omitempty"`

	// OptimizeSSR applies to server targets only. Nil means true.
	OptimizeSSR *bool `yaml:"optimizeSSR,omitempty"`

	// Prettify formats development output. Nil means true.
	Prettify *bool `yaml:"prettify,omitempty"`

	CDNPrefix string `yaml:"cdnPrefix,omitempty"`

	// Normalize reprints each emitted module through esbuild.
	Normalize bool `yaml:"normalize,omitempty"`
}

// Prefix returns the configured CDN prefix or DefaultCDNPrefix.
func (o *Options) Prefix() string {
	if o == nil || o.CDNPrefix == "" {
		return DefaultCDNPrefix
	}
	return o.CDNPrefix
}

// Parse decodes YAML options. Unknown keys are rejected.
func Parse(data []byte) (*Options, error) {
	var o Options
	if len(bytes.TrimSpace(data)) == 0 {
		return &o, nil
	}
	if err := yaml.UnmarshalWithOptions(data, &o, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("decoding options: %w", err)
	}
	return &o, nil
}

// Load reads and decodes an options file.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options: %w", err)
	}
	o, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}
