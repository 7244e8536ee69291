// Package emit serializes rewritten render code into an ES module.
package emit

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/phobologic/templateloader/internal/rewrite"
)

// Exports is appended to every module. The bindings are expected to be
// declared by the generated code; nothing checks that they are.
const Exports = "export { render, staticRenderFns }"

// Serialize applies the edits of res to its source.
func Serialize(res *rewrite.Result) string {
	var b strings.Builder
	b.Grow(len(res.Source))
	var last uint32
	for _, e := range res.Edits {
		b.Write(res.Source[last:e.Start])
		b.WriteString(e.Text)
		last = e.End
	}
	b.Write(res.Source[last:])
	return b.String()
}

// Module returns the final module text for res.
func Module(res *rewrite.Result) string {
	return strings.TrimRight(Serialize(res), " \t\r\n") + "\n" + Exports
}

// Normalize reprints module with esbuild's parser and printer. Non-ASCII
// text such as the default CDN prefix is kept as is.
func Normalize(module string) (string, error) {
	res := api.Transform(module, api.TransformOptions{
		Loader:  api.LoaderJS,
		Charset: api.CharsetUTF8,
	})
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, m := range res.Errors {
			msgs[i] = m.Text
		}
		return "", fmt.Errorf("normalizing module: %s", strings.Join(msgs, "; "))
	}
	return string(res.Code), nil
}
