// Command cfront runs the C front end: lexing, parsing, lowering to an
// abstract syntax tree and scope resolution.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/config"
	"github.com/andrewchambers/cfront/parse"
	"github.com/andrewchambers/cfront/scope"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var Version = "0.1.0"

// errReported marks an error already printed with its source context.
var errReported = errors.New("reported")

type app struct {
	configPath string
	verbose    bool
	outputPath string

	stdout, stderr io.Writer
	injector       *do.Injector
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

func (a *app) container() *do.Injector {
	if a.injector == nil {
		a.injector = newInjector(settings{
			configPath: a.configPath,
			verbose:    a.verbose,
			logOutput:  a.stderr,
		})
	}
	return a.injector
}

// onFile opens path and the output, then runs f. Errors from f are reported
// with their source line.
func (a *app) onFile(path string, f func(p *Pipeline, in io.Reader, out io.Writer) error) error {
	cfg, err := do.Invoke[*config.Config](a.container())
	if err != nil {
		return err
	}
	p := do.MustInvoke[*Pipeline](a.container())
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", path, err)
	}
	defer in.Close()
	out := a.stdout
	if a.outputPath != "" && a.outputPath != "-" {
		file, err := os.Create(a.outputPath)
		if err != nil {
			return fmt.Errorf("failed to open output file: %w", err)
		}
		defer file.Close()
		out = file
	}
	if err := f(p, in, out); err != nil {
		reportError(a.stderr, err, cfg)
		return errReported
	}
	return nil
}

func (a *app) fileCommand(use, short string, f func(p *Pipeline, path string, in io.Reader, out io.Writer) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " FILE.c",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return a.onFile(path, func(p *Pipeline, in io.Reader, out io.Writer) error {
				return f(p, path, in, out)
			})
		},
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cfront",
		Short: "C front end: parse, lower and resolve scopes",
		Long: `cfront reads one C source file, builds its abstract syntax tree and
resolves every declaration into nested scopes.

Environment variables:
  CCDEBUG=true          attach stack traces to semantic errors.
  CFRONT_LOG_LEVEL      debug, info, warn or error.
  CFRONT_LOG_FORMAT     text or json.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file, TOML or YAML")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log every pass at debug level")
	root.PersistentFlags().StringVarP(&a.outputPath, "output", "o", "-", "file to write output to, - for stdout")

	root.AddCommand(
		a.fileCommand("check", "Check a file and report the first error", func(p *Pipeline, path string, in io.Reader, out io.Writer) error {
			_, err := p.Check(path, in)
			return err
		}),
		a.fileCommand("ast", "Print the abstract syntax tree", func(p *Pipeline, path string, in io.Reader, out io.Writer) error {
			tu, err := p.Lower(path, in)
			if err != nil {
				return err
			}
			return ast.Fprint(out, tu)
		}),
		a.fileCommand("scopes", "Print the resolved scope tree", func(p *Pipeline, path string, in io.Reader, out io.Writer) error {
			res, err := p.Check(path, in)
			if err != nil {
				return err
			}
			if err := scope.Fprint(out, res.Resolution.Global); err != nil {
				return err
			}
			for _, id := range res.Resolution.Unresolved {
				fmt.Fprintf(out, "unresolved %s at %s\n", id.Lexeme(), id.Pos())
			}
			return nil
		}),
		a.fileCommand("cst", "Print the concrete syntax tree", func(p *Pipeline, path string, in io.Reader, out io.Writer) error {
			cst, err := p.Parse(path, in)
			if err != nil {
				return err
			}
			return parse.Fprint(out, cst)
		}),
		a.fileCommand("tokens", "Print tokens after lexing", func(p *Pipeline, path string, in io.Reader, out io.Writer) error {
			toks, err := p.Tokens(path, in)
			for _, tok := range toks {
				fmt.Fprintf(out, "%s:%s:%d:%d\n", tok.Kind, tok.Val, tok.Pos.Line, tok.Pos.Col)
			}
			return err
		}),
		a.versionCommand(),
		a.configCommand(),
	)
	return root
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cfront version %s %s/%s\n", Version, runtime.GOOS, runtime.GOARCH)
		},
	}
}

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the default config, TOML unless PATH ends in .yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				data, err := config.Default().Encode(config.FormatTOML)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			data, err := config.Default().Encode(config.DetectFormat(path))
			if err != nil {
				return err
			}
			return os.WriteFile(path, data, 0o644)
		},
	})
	return cmd
}

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := a.rootCommand().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "cfront: %s\n", err)
		}
		os.Exit(1)
	}
}
