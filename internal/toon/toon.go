// Package toon implements TOON (Token-Oriented Object Notation) encoding of
// the asset manifest consumed by the packaging stage.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/templateloader/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts the asset list into TOON format. Every asset is one row of
// the table, in registry order, duplicates included.
func Encode(prefix string, assets []model.Asset) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("prefix: %s", encodeValue(prefix)))

	rows := make([][]string, 0, len(assets))
	for i := range assets {
		a := &assets[i]
		rows = append(rows, []string{a.Path, a.Name})
	}
	parts = append(parts, formatTabular("assets", []string{"path", "name"}, rows))

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	// Every manifest value is a string.
	if looksNumeric.MatchString(value) {
		return quote(value)
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
