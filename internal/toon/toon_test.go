package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/templateloader/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"newline", "a\nb", `"a\nb"`},
		{"true keyword", "true", `"true"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", `"42"`},
		{"leading zero", "007", `"007"`},
		{"exponent", "1e5", `"1e5"`},
		{"negative decimal", "-1.5", `"-1.5"`},
		{"digits in path", "2024/a.png", "2024/a.png"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "C:/assets", `"C:/assets"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"absolute path", "/proj/src/a.png", "/proj/src/a.png"},
		{"short name", "src/a.png", "src/a.png"},
		{"unicode prefix", "七牛云路径", "七牛云路径"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	assets := []model.Asset{
		{Path: "/proj/src/a.png", Name: "src/a.png"},
		{Path: "/proj/img/logo, big.svg", Name: "img/logo, big.svg"},
		{Path: "/proj/src/a.png", Name: "src/a.png"},
	}

	got := Encode("https://cdn.example.com", assets)

	lines := strings.Split(got, "\n")
	want := []string{
		`prefix: "https://cdn.example.com"`,
		"assets[3]{path,name}:",
		"  /proj/src/a.png,src/a.png",
		`  "/proj/img/logo, big.svg","img/logo, big.svg"`,
		"  /proj/src/a.png,src/a.png",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode("cdn", nil)
	if got != "prefix: cdn\nassets[0]{path,name}:" {
		t.Errorf("unexpected empty manifest:\n%s", got)
	}
}

func TestEncodeNumericPrefix(t *testing.T) {
	t.Parallel()

	got := Encode("2024", []model.Asset{{Path: "/proj/10/1.png", Name: "10/1.png"}})
	want := "prefix: \"2024\"\nassets[1]{path,name}:\n  /proj/10/1.png,10/1.png"
	if got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}
