package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/phobologic/templateloader/internal/options"
)

const defaultConfigPath = "templateloader.yaml"

// runInit implements the `templateloader init` subcommand, which writes an
// options file documenting every option and its default.
func runInit(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("templateloader init", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var dryRun, force bool
	flags.BoolVar(&dryRun, "dry-run", false, "print the options file instead of writing it")
	flags.BoolVar(&force, "force", false, "overwrite an existing file")

	flags.Usage = func() {
		fmt.Fprintf(stderr, `Usage: templateloader init [flags] [path]

Write a default options file for templateloader. Every option is listed with
its default value, commented out. Pass the file to the compiler with -config.

path defaults to ./%s.

Flags:
`, defaultConfigPath)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return err
	}

	content := generateConfig()

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	path := defaultConfigPath
	if flags.NArg() > 0 {
		path = flags.Arg(0)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use -force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote options to %s\n", path)
	return nil
}

// generateConfig returns the default options file. It is a pure function for
// easy testing.
func generateConfig() string {
	return `# templateloader options

# Prefix of the URL that replaces each require("<asset>") call.
cdnPrefix: ` + options.DefaultCDNPrefix + `

# Merged over {outputSourceRange: true}. scopeId and comments always come
# from the resource query.
# compilerOptions:
#   whitespace: condense

# Passed to the render-code transpiler unchanged.
# transpileOptions:
#   transforms:
#     stripWith: true

# Tag attributes the compiler turns into require calls.
# transformAssetUrls:
#   img: [src]
#   video: [src, poster]

# Force a production build.
# productionMode: false

# Optimize server rendering for node targets.
# optimizeSSR: true

# Format development output.
# prettify: true

# Reprint every emitted module through esbuild.
# normalize: false
`
}
