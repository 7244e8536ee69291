package lang

import (
	"github.com/smacker/go-tree-sitter/html"
)

// HTML is the grammar used to split component files into blocks.
const HTML = "html"

func init() {
	Languages[HTML] = &Language{
		Name:       HTML,
		Extensions: []string{".vue", ".html"},
		lang:       html.GetLanguage(),
	}
}
