package emit

import (
	"strings"
	"testing"

	"github.com/phobologic/templateloader/internal/rewrite"
)

func TestSerialize(t *testing.T) {
	t.Parallel()

	res := &rewrite.Result{
		Source: []byte(`a(require("x"), require("y"))`),
		Edits: []rewrite.Edit{
			{Start: 2, End: 14, Text: `"cdn/x"`},
			{Start: 16, End: 28, Text: `"cdn/y"`},
		},
	}
	got := Serialize(res)
	if got != `a("cdn/x", "cdn/y")` {
		t.Errorf("Serialize = %q", got)
	}
}

func TestModule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"plain", "var render = 1", "var render = 1\nexport { render, staticRenderFns }"},
		{"trailing newline", "var render = 1\n\n", "var render = 1\nexport { render, staticRenderFns }"},
		{"empty", "", "\nexport { render, staticRenderFns }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Module(&rewrite.Result{Source: []byte(tt.source)})
			if got != tt.want {
				t.Errorf("Module = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	module := "var render = function(){return _c('img',{attrs:{\"src\":\"七牛云路径/src/a.png\"}})}\n" +
		"var staticRenderFns = []\n" + Exports
	got, err := Normalize(module)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, want := range []string{"var render = function()", "七牛云路径/src/a.png", "staticRenderFns", "export {"} {
		if !strings.Contains(got, want) {
			t.Errorf("normalized module missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "require(") {
		t.Errorf("normalized module gained a require call:\n%s", got)
	}
}

func TestNormalizeSyntaxError(t *testing.T) {
	t.Parallel()

	got, err := Normalize("var render = function( {\n" + Exports)
	if err == nil {
		t.Fatalf("expected error, got %q", got)
	}
	if !strings.HasPrefix(err.Error(), "normalizing module: ") {
		t.Errorf("err = %v", err)
	}
}
