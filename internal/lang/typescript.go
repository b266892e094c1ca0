package lang

import (
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	// .ts files keep their own grammar: `<T>expr` casts do not parse as TSX.
	Languages["typescript"] = &Language{
		Name:       "typescript",
		Extensions: []string{".ts", ".mts", ".cts"},
		TypeCasts:  true,
		lang:       typescript.GetLanguage(),
		queryName:  "javascript",
	}
	Languages["tsx"] = &Language{
		Name:       "tsx",
		Extensions: []string{".tsx"},
		TypeCasts:  true,
		lang:       tsx.GetLanguage(),
		queryName:  "javascript",
	}
}
