// Package sfc splits single-file components into the blocks the template
// loader needs.
package sfc

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/templateloader/internal/lang"
)

// Attr is one attribute of a block's opening tag. Value is "" for bare
// attributes such as functional.
type Attr struct {
	Name  string
	Value string
}

// Block is a top-level block of a component file.
type Block struct {
	Content string
	Start   uint32 // byte offset of Content in the file
	Attrs   []Attr
}

// Has reports whether the block's opening tag carries attribute name.
func (b *Block) Has(name string) bool {
	for _, a := range b.Attrs {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Descriptor is the parsed form of a component file.
type Descriptor struct {
	Template *Block // nil when the file has no template block
	Scoped   bool   // any <style scoped> block
}

// Parse extracts the top-level template and style blocks from source. The
// parser must be created for the html language.
func Parse(ctx context.Context, parser *sitter.Parser, source []byte) (*Descriptor, error) {
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing component: %w", err)
	}
	defer tree.Close()

	d := &Descriptor{}
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "element":
			start := childOfType(node, "start_tag")
			if start == nil || tagName(start, source) != "template" || d.Template != nil {
				continue
			}
			d.Template = block(node, start, source)
		case "style_element":
			start := childOfType(node, "start_tag")
			if start != nil && hasAttr(start, "scoped", source) {
				d.Scoped = true
			}
		}
	}
	return d, nil
}

// Query returns the resource query the template loader expects for d.
func (d *Descriptor) Query(id string) string {
	var b strings.Builder
	b.WriteString("?vue&type=template&id=")
	b.WriteString(url.QueryEscape(id))
	if d.Scoped {
		b.WriteString("&scoped=true")
	}
	if d.Template != nil {
		for _, a := range d.Template.Attrs {
			b.WriteString("&")
			b.WriteString(url.QueryEscape(a.Name))
			if a.Value != "" {
				b.WriteString("=")
				b.WriteString(url.QueryEscape(a.Value))
			}
		}
	}
	return b.String()
}

func block(element, start *sitter.Node, source []byte) *Block {
	contentEnd := element.EndByte()
	if end := childOfType(element, "end_tag"); end != nil {
		contentEnd = end.StartByte()
	}
	contentStart := start.EndByte()
	if contentEnd < contentStart {
		contentEnd = contentStart
	}
	return &Block{
		Content: string(source[contentStart:contentEnd]),
		Start:   contentStart,
		Attrs:   attrs(start, source),
	}
}

func childOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == typ {
			return child
		}
	}
	return nil
}

func tagName(start *sitter.Node, source []byte) string {
	if n := childOfType(start, "tag_name"); n != nil {
		return strings.ToLower(lang.NodeText(n, source))
	}
	return ""
}

func attrs(start *sitter.Node, source []byte) []Attr {
	var out []Attr
	for i := 0; i < int(start.NamedChildCount()); i++ {
		child := start.NamedChild(i)
		if child.Type() != "attribute" {
			continue
		}
		var a Attr
		for j := 0; j < int(child.NamedChildCount()); j++ {
			part := child.NamedChild(j)
			switch part.Type() {
			case "attribute_name":
				a.Name = lang.NodeText(part, source)
			case "attribute_value":
				a.Value = lang.NodeText(part, source)
			case "quoted_attribute_value":
				if v := childOfType(part, "attribute_value"); v != nil {
					a.Value = lang.NodeText(v, source)
				}
			}
		}
		if a.Name != "" {
			out = append(out, a)
		}
	}
	return out
}

func hasAttr(start *sitter.Node, name string, source []byte) bool {
	for _, a := range attrs(start, source) {
		if a.Name == name {
			return true
		}
	}
	return false
}
