package lang

import (
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScript is the grammar of compiled render code.
const JavaScript = "javascript"

func init() {
	Languages[JavaScript] = &Language{
		Name:       JavaScript,
		Extensions: []string{".js"},
		lang:       javascript.GetLanguage(),
	}
}
