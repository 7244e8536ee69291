// templateloader compiles component templates into render modules and
// relocates the assets they load to a CDN.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/templateloader/internal/compiler"
	"github.com/phobologic/templateloader/internal/discover"
	"github.com/phobologic/templateloader/internal/lang"
	"github.com/phobologic/templateloader/internal/loader"
	"github.com/phobologic/templateloader/internal/model"
	"github.com/phobologic/templateloader/internal/options"
	"github.com/phobologic/templateloader/internal/registry"
	"github.com/phobologic/templateloader/internal/sfc"
)

var version = "dev"

func main() {
	c := &cli{stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv}

	var err error
	if len(os.Args) > 1 && os.Args[1] == "init" {
		err = runInit(os.Args[2:], os.Stdout, os.Stderr)
	} else {
		err = c.run(os.Args[1:])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the process environment into run.
type cli struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	// compiler replaces the template compiler selected by flags and options.
	compiler compiler.Compiler

	stderrMu sync.Mutex
}

type config struct {
	outDir   string
	manifest string
	root     string
	query    string
	target   string
	minimize bool
	workers  int
	exclude  []string
	tests    bool
	opts     *options.Options
}

func (c *cli) run(args []string) error {
	fs := flag.NewFlagSet("templateloader", flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	var (
		cfg         config
		configPath  string
		prefix      string
		normalize   bool
		exclude     string
		nodePath    string
		module      string
		showVersion bool
	)

	fs.StringVar(&cfg.outDir, "o", "", "write modules under this directory")
	fs.StringVar(&cfg.outDir, "out", "", "write modules under this directory")
	fs.StringVar(&configPath, "config", "", "options file (YAML)")
	fs.StringVar(&cfg.manifest, "manifest", "", "write the asset manifest to this file")
	fs.StringVar(&cfg.root, "root", "", "project root used for component ids (default: working directory)")
	fs.StringVar(&cfg.query, "query", "", "resource query for a single template file")
	fs.StringVar(&cfg.target, "target", "web", "build target; node enables server rendering")
	fs.BoolVar(&cfg.minimize, "minimize", false, "production build")
	fs.StringVar(&prefix, "prefix", "", "CDN prefix for relocated assets")
	fs.BoolVar(&normalize, "normalize", false, "reprint emitted modules through esbuild")
	fs.StringVar(&exclude, "exclude", "", "comma-separated gitignore-style patterns to skip")
	fs.BoolVar(&cfg.tests, "tests", false, "include test components and fixtures")
	fs.IntVar(&cfg.workers, "j", runtime.GOMAXPROCS(0), "number of files compiled in parallel")
	fs.StringVar(&nodePath, "node", "", "node executable for the default compiler")
	fs.StringVar(&module, "compiler", "", "template compiler package for the default compiler")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(c.stdout, "templateloader %s\n", version)
		return nil
	}

	cfg.opts = &options.Options{}
	if configPath != "" {
		o, err := options.Load(configPath)
		if err != nil {
			return err
		}
		cfg.opts = o
	}
	if prefix != "" {
		cfg.opts.CDNPrefix = prefix
	}
	if normalize {
		cfg.opts.Normalize = true
	}
	switch {
	case c.compiler != nil:
		cfg.opts.Compiler = c.compiler
	case nodePath != "" || module != "":
		cfg.opts.Compiler = &compiler.Node{Command: nodePath, Module: module}
	}
	if exclude != "" {
		for _, p := range strings.Split(exclude, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.exclude = append(cfg.exclude, p)
			}
		}
	}

	input := "."
	if fs.NArg() > 0 {
		input = fs.Arg(0)
	}
	input, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("resolving input: %w", err)
	}
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input path: %w", err)
	}

	if cfg.root == "" {
		cfg.root = "."
	}
	if cfg.root, err = filepath.Abs(cfg.root); err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	var files []job
	if info.IsDir() {
		if cfg.outDir == "" {
			return fmt.Errorf("-o is required when compiling a directory")
		}
		if cfg.query != "" {
			return fmt.Errorf("-query only applies to a single file")
		}
		entries, err := discover.Files(input, discover.Filter{Exclude: cfg.exclude, Tests: cfg.tests})
		if err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
		for _, e := range entries {
			files = append(files, job{abs: filepath.Join(input, e.Path), rel: e.Path, component: e.Component})
		}
	} else {
		files = append(files, job{abs: input, rel: filepath.Base(input), component: filepath.Ext(input) == ".vue"})
	}
	if len(files) == 0 {
		return fmt.Errorf("no template files found")
	}

	results := c.compileConcurrent(files, &cfg)

	// Merge in file order so the manifest does not depend on scheduling.
	reg := registry.New()
	for i, r := range results {
		if r.err != nil {
			return fmt.Errorf("%s: %w", files[i].rel, r.err)
		}
		if r.out != nil {
			reg.Append(r.out.Assets...)
		}
	}

	for i, r := range results {
		if r.out == nil {
			continue
		}
		if err := c.writeModule(&cfg, files[i], r.out.Code); err != nil {
			return err
		}
	}

	if cfg.manifest != "" {
		data := reg.Encode(cfg.opts.Prefix()) + "\n"
		if err := os.WriteFile(cfg.manifest, []byte(data), 0o644); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
	}
	return nil
}

type job struct {
	abs       string
	rel       string
	component bool
}

type result struct {
	out *model.Output // nil when the file was skipped
	err error
}

func (c *cli) compileConcurrent(files []job, cfg *config) []result {
	numWorkers := max(1, cfg.workers)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	results := make([]result, len(files))
	work := make(chan int, len(files))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parsers
			l, err := loader.New()
			html := lang.Languages[lang.HTML].NewParser()

			for idx := range work {
				if err != nil {
					results[idx] = result{err: err}
					continue
				}
				results[idx] = c.compileFile(l, html, files[idx], cfg)
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	return results
}

func (c *cli) compileFile(l *loader.Loader, html *sitter.Parser, f job, cfg *config) result {
	ctx := context.Background()

	data, err := os.ReadFile(f.abs)
	if err != nil {
		return result{err: err}
	}

	production := cfg.opts.ProductionMode || cfg.minimize || c.getenv("NODE_ENV") == "production"
	id := options.ComponentID(cfg.root, f.abs, string(data), production)

	source := string(data)
	query := "?vue&type=template&id=" + id
	if f.component {
		d, err := sfc.Parse(ctx, html, data)
		if err != nil {
			return result{err: err}
		}
		if d.Template == nil {
			c.warn(f.rel, "no <template> block, skipped")
			return result{}
		}
		source = d.Template.Content
		query = d.Query(id)
	}
	if cfg.query != "" {
		query = cfg.query
	}

	lctx := options.Context{
		Target:        cfg.target,
		Minimize:      cfg.minimize,
		ProductionEnv: c.getenv("NODE_ENV") == "production",
		ResourcePath:  f.abs,
		ResourceQuery: query,
	}

	// A per-file registry keeps each file's assets contiguous; run merges
	// them into the shared registry in file order.
	out, err := l.Load(ctx, source, lctx, cfg.opts, registry.New())
	if err != nil {
		return result{err: err}
	}

	for _, w := range out.Warnings {
		c.warn(f.rel, w)
	}
	if out.Error != "" {
		c.stderrMu.Lock()
		_, _ = fmt.Fprintf(c.stderr, "Error: %s:%s", f.rel, out.Error)
		c.stderrMu.Unlock()
	}
	return result{out: out}
}

func (c *cli) warn(file, msg string) {
	c.stderrMu.Lock()
	_, _ = fmt.Fprintf(c.stderr, "Warning: %s: %s\n", file, msg)
	c.stderrMu.Unlock()
}

func (c *cli) writeModule(cfg *config, f job, code string) error {
	if cfg.outDir == "" {
		_, _ = fmt.Fprintln(c.stdout, code)
		return nil
	}
	path := filepath.Join(cfg.outDir, strings.TrimSuffix(f.rel, filepath.Ext(f.rel))+".js")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(code+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-o": true, "--o": true,
	"-out": true, "--out": true,
	"-config": true, "--config": true,
	"-manifest": true, "--manifest": true,
	"-root": true, "--root": true,
	"-query": true, "--query": true,
	"-target": true, "--target": true,
	"-prefix": true, "--prefix": true,
	"-exclude": true, "--exclude": true,
	"-j": true, "--j": true,
	"-node": true, "--node": true,
	"-compiler": true, "--compiler": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
