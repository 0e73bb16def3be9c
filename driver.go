package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/andrewchambers/cfront/ast"
	"github.com/andrewchambers/cfront/config"
	"github.com/andrewchambers/cfront/cpp"
	"github.com/andrewchambers/cfront/lower"
	"github.com/andrewchambers/cfront/parse"
	"github.com/andrewchambers/cfront/scope"
	"github.com/google/uuid"
	"github.com/samber/do"
)

// Pipeline runs the front end passes over one source file at a time.
type Pipeline struct {
	log *slog.Logger
}

func NewPipeline(log *slog.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// Result is the output of a full check.
type Result struct {
	AST        *ast.Composite
	Resolution *scope.Resolution
}

func (p *Pipeline) runLogger(path string) *slog.Logger {
	return p.log.With("run", uuid.NewString(), "file", path)
}

func (p *Pipeline) Tokens(path string, r io.Reader) ([]*cpp.Token, error) {
	return cpp.Tokenize(path, r)
}

func (p *Pipeline) Parse(path string, r io.Reader) (*parse.Rule, error) {
	return parse.ParseReader(path, r)
}

func (p *Pipeline) Lower(path string, r io.Reader) (*ast.Composite, error) {
	log := p.runLogger(path)
	return p.lower(log, path, r)
}

func (p *Pipeline) lower(log *slog.Logger, path string, r io.Reader) (*ast.Composite, error) {
	cst, err := parse.ParseReader(path, r)
	if err != nil {
		return nil, err
	}
	log.Debug("parsed")
	tu, err := lower.Lower(cst)
	if err != nil {
		return nil, fmt.Errorf("lowering %s: %w", path, err)
	}
	log.Debug("lowered", "functions", len(tu.Children(ast.UnitFunctions)),
		"declarations", len(tu.Children(ast.UnitDeclarations)))
	return tu, nil
}

// Check runs every pass and returns the tree with its scopes.
func (p *Pipeline) Check(path string, r io.Reader) (*Result, error) {
	log := p.runLogger(path)
	tu, err := p.lower(log, path, r)
	if err != nil {
		return nil, err
	}
	res, err := scope.Resolve(tu, log)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	log.Info("checked", "unresolved", len(res.Unresolved))
	return &Result{AST: tu, Resolution: res}, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type settings struct {
	configPath string
	verbose    bool
	logOutput  io.Writer
}

// newInjector wires the configuration, the logger and the pipeline. Each
// is built on first use.
func newInjector(s settings) *do.Injector {
	i := do.New()
	do.Provide(i, func(i *do.Injector) (*config.Config, error) {
		cfg, err := config.Load(s.configPath)
		if err != nil {
			return nil, err
		}
		cfg.ApplyEnv()
		if s.verbose {
			cfg.Log.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if cfg.Debug.Stack {
			os.Setenv("CCDEBUG", "true")
		}
		return cfg, nil
	})
	do.Provide(i, func(i *do.Injector) (*slog.Logger, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		w := s.logOutput
		if w == nil {
			w = os.Stderr
		}
		return newLogger(w, cfg), nil
	})
	do.Provide(i, func(i *do.Injector) (*Pipeline, error) {
		log, err := do.Invoke[*slog.Logger](i)
		if err != nil {
			return nil, err
		}
		return NewPipeline(log), nil
	})
	return i
}
