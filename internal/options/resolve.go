package options

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/phobologic/templateloader/internal/model"
)

// Context is what the build pipeline knows about one invocation.
type Context struct {
	Target        string // "node" selects server rendering
	Minimize      bool
	ProductionEnv bool // NODE_ENV=production
	ResourcePath  string
	ResourceQuery string
}

var (
	errNoResourcePath = errors.New("missing resource path")
	errNoID           = errors.New("scoped template requires an id")
)

// Resolve builds the compiler request for source. It has no side effects.
func Resolve(ctx Context, source string, opts *Options) (*model.Request, error) {
	if opts == nil {
		opts = &Options{}
	}
	if ctx.ResourcePath == "" {
		return nil, errNoResourcePath
	}
	q, err := ParseQuery(ctx.ResourceQuery)
	if err != nil {
		return nil, err
	}

	var scopeID string
	if q.Scoped {
		if q.ID == "" {
			return nil, errNoID
		}
		scopeID = "data-v-" + q.ID
	}

	server := ctx.Target == "node"

	compilerOptions := map[string]any{"outputSourceRange": true}
	for k, v := range opts.CompilerOptions {
		compilerOptions[k] = v
	}
	if scopeID != "" {
		compilerOptions["scopeId"] = scopeID
	} else {
		compilerOptions["scopeId"] = nil
	}
	compilerOptions["comments"] = q.Comments

	return &model.Request{
		Source:             source,
		Filename:           ctx.ResourcePath,
		ID:                 q.ID,
		ScopeID:            scopeID,
		Scoped:             q.Scoped,
		Functional:         q.Functional,
		Comments:           q.Comments,
		Server:             server,
		Production:         opts.ProductionMode || ctx.Minimize || ctx.ProductionEnv,
		OptimizeSSR:        server && (opts.OptimizeSSR == nil || *opts.OptimizeSSR),
		Prettify:           opts.Prettify == nil || *opts.Prettify,
		TransformAssetURLs: opts.TransformAssetURLs,
		CompilerOptions:    compilerOptions,
		TranspileOptions:   opts.TranspileOptions,
	}, nil
}

var parentPrefix = regexp.MustCompile(`^(\.\.[/\\])+`)

// ComponentID derives the 8 hex digit id of the component at path. The id
// depends on the root-relative path, and in production also on the source so
// that changed components get fresh scope ids.
func ComponentID(root, path, source string, production bool) string {
	short := path
	if rel, err := filepath.Rel(root, path); err == nil {
		short = rel
	}
	short = parentPrefix.ReplaceAllString(filepath.ToSlash(short), "")

	input := short
	if production {
		input = short + "\n" + strings.ReplaceAll(source, "\r\n", "\n")
	}
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:4])
}
