package compiler

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/phobologic/templateloader/internal/model"
)

//go:embed node_driver.js
var nodeDriverSource string

// Node compiles templates by running @vue/component-compiler-utils under a
// node subprocess. One process is started per Compile call.
type Node struct {
	// Command is the node executable. Defaults to "node" on PATH.
	Command string
	// Module is the template compiler package. Defaults to
	// "vue-template-compiler".
	Module string
	// Script replaces the embedded driver script.
	Script string
	// Dir is the working directory used for module resolution.
	Dir string
	Env []string

	lookOnce sync.Once
	path     string
	lookErr  error
}

type nodeRequest struct {
	Source             string         `json:"source"`
	Filename           string         `json:"filename"`
	Compiler           string         `json:"compiler,omitempty"`
	CompilerOptions    map[string]any `json:"compilerOptions"`
	TranspileOptions   map[string]any `json:"transpileOptions,omitempty"`
	TransformAssetURLs any            `json:"transformAssetUrls"`
	IsProduction       bool           `json:"isProduction"`
	IsFunctional       bool           `json:"isFunctional"`
	OptimizeSSR        bool           `json:"optimizeSSR"`
	Prettify           bool           `json:"prettify"`
}

type nodeDiagnostic struct {
	Msg   string `json:"msg"`
	Start *int   `json:"start"`
	End   *int   `json:"end"`
}

type nodeResult struct {
	Code   string           `json:"code"`
	Source string           `json:"source"`
	Tips   []nodeDiagnostic `json:"tips"`
	Errors []nodeDiagnostic `json:"errors"`
}

func (n *Node) command() (string, error) {
	n.lookOnce.Do(func() {
		cmd := n.Command
		if cmd == "" {
			cmd = "node"
		}
		n.path, n.lookErr = exec.LookPath(cmd)
		if n.lookErr != nil {
			n.lookErr = fmt.Errorf("locating template compiler runtime: %w", n.lookErr)
		}
	})
	return n.path, n.lookErr
}

// Compile implements Compiler.
func (n *Node) Compile(ctx context.Context, req *model.Request) (*model.Result, error) {
	path, err := n.command()
	if err != nil {
		return nil, err
	}

	var transformAssetURLs any = true
	if req.TransformAssetURLs != nil {
		transformAssetURLs = req.TransformAssetURLs
	}
	input, err := json.Marshal(nodeRequest{
		Source:             req.Source,
		Filename:           req.Filename,
		Compiler:           n.Module,
		CompilerOptions:    req.CompilerOptions,
		TranspileOptions:   req.TranspileOptions,
		TransformAssetURLs: transformAssetURLs,
		IsProduction:       req.Production,
		IsFunctional:       req.Functional,
		OptimizeSSR:        req.OptimizeSSR,
		Prettify:           req.Prettify,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding compiler request: %w", err)
	}

	script := n.Script
	if script == "" {
		script = nodeDriverSource
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-e", script)
	cmd.Dir = n.Dir
	if n.Env != nil {
		cmd.Env = n.Env
	}
	cmd.Stdin = bytes.NewReader(input)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("running template compiler: %w", err)
		}
		return nil, fmt.Errorf("running template compiler: %w\n%s", err, msg)
	}

	return decodeResult(stdout.Bytes(), req.Source)
}

// CodeFrame implements CodeFramer.
func (n *Node) CodeFrame(source string, start, end int) string {
	return CodeFrame(source, start, end)
}

func decodeResult(data []byte, source string) (*model.Result, error) {
	var out nodeResult
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding compiler output: %w", err)
	}
	return &model.Result{
		Code:   out.Code,
		Source: out.Source,
		Tips:   convertDiagnostics(out.Tips, source),
		Errors: convertDiagnostics(out.Errors, source),
	}, nil
}

// convertDiagnostics maps the driver's UTF-16 offsets to byte offsets.
func convertDiagnostics(in []nodeDiagnostic, source string) []model.Diagnostic {
	if len(in) == 0 {
		return nil
	}
	out := make([]model.Diagnostic, len(in))
	for i, d := range in {
		out[i].Message = d.Msg
		if d.Start == nil {
			continue
		}
		start := byteOffset(source, *d.Start)
		end := len(source)
		if d.End != nil {
			end = byteOffset(source, *d.End)
		}
		out[i].Range = &model.Range{Start: start, End: end}
	}
	return out
}

func byteOffset(s string, units int) int {
	n := 0
	for i, r := range s {
		if n >= units {
			return i
		}
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return len(s)
}
