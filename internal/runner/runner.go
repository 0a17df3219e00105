// Package runner orchestrates one compile-and-run invocation: classify the
// batch, build the stale subset in parallel, link, execute, sweep.
package runner

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kuranne/run/internal/artifacts"
	"github.com/kuranne/run/internal/cache"
	"github.com/kuranne/run/internal/compiler"
	"github.com/kuranne/run/internal/config"
	"github.com/kuranne/run/internal/executor"
	"github.com/kuranne/run/internal/runerr"
	"github.com/kuranne/run/internal/toolchain"
)

// Runner drives the pipeline for one invocation.
type Runner struct {
	cfg      *config.Config
	registry *toolchain.Registry
	exec     *executor.Executor
	objCache compiler.ObjectCache
	life     *artifacts.Lifecycle
	logger   *slog.Logger

	// persistent is the real cache, nil for --no-cache runs
	persistent *cache.Cache
}

// New wires a runner from loaded configuration.
func New(cfg *config.Config) (*Runner, error) {
	exec := executor.New()
	exec.DryRun = cfg.DryRun
	exec.Timed = cfg.Timed

	r := &Runner{
		cfg:      cfg,
		registry: cfg.Registry(),
		exec:     exec,
		life:     artifacts.NewLifecycle(),
		logger:   slog.Default(),
	}

	if cfg.NoCache {
		r.objCache = cache.Disabled{}
	} else {
		c, err := cache.New(cfg.CacheDir)
		if err != nil {
			return nil, err
		}

		r.persistent = c
		r.objCache = c
	}

	return r, nil
}

// WithLogger sets a custom logger on the runner and its collaborators.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	r.logger = logger
	r.life.WithLogger(logger)

	if r.persistent != nil {
		r.persistent.WithLogger(logger)
	}

	return r
}

// CompileAndRun processes the file batch: multi mode compiles and links the
// whole set; otherwise each file is handled on its own.
func (r *Runner) CompileAndRun(files []string) error {
	if len(files) == 0 {
		return nil
	}

	if r.cfg.Multi {
		return r.runMulti(files)
	}

	for _, file := range files {
		if err := r.runSingle(file); err != nil {
			return err
		}
	}

	return nil
}

// Cleanup sweeps the run's transient artifacts and releases the cache.
func (r *Runner) Cleanup() {
	if r.cfg.DryRun {
		for _, path := range r.life.Paths() {
			fmt.Printf("[DRY-RUN] would delete: %s\n", path)
		}
	} else {
		r.life.Sweep(r.cfg.Keep)
	}

	if r.persistent != nil {
		if err := r.persistent.Close(); err != nil {
			r.logger.Warn("failed to close cache", "error", err)
		}
	}
}

// runSingle dispatches one file by its resolved rule: interpreters run the
// file directly, compilers produce a transient executable and run it.
func (r *Runner) runSingle(file string) error {
	rule, err := r.registry.Resolve(filepath.Ext(file))
	if err != nil {
		return err
	}

	if rule.Mode == toolchain.ModeInterpreter {
		return r.runInterpreted(rule, file)
	}

	target, err := ExecutablePath(file)
	if err != nil {
		return err
	}

	argv := []string{rule.Runner}
	argv = append(argv, rule.Subcommand...)
	argv = append(argv, rule.Flags...)
	argv = append(argv, r.cfg.ExtraFlags...)
	argv = append(argv, r.cfg.PresetFlags(rule.Name)...)
	argv = append(argv, file, "-o", target)

	if err := r.exec.Run("COMPILE", argv); err != nil {
		return runerr.Wrap(runerr.KindCompilation, err, "failed to compile %s", file)
	}

	r.life.Register(target)

	args := append([]string{}, rule.Arguments...)
	args = append(args, r.cfg.RunArgs...)

	return r.executeBinary(target, args)
}

// runMulti compiles a C-family batch to objects in parallel, links on full
// success and runs the result. The batch must hold exactly one language
// family: C-family sources plus headers.
func (r *Runner) runMulti(files []string) error {
	sources, headers, foreign := partition(files)

	if len(foreign) > 0 {
		return runerr.Configuration(
			"multi-file build supports a single C/C++ family, got: %s", strings.Join(foreign, ", "))
	}

	if len(sources) == 0 {
		return runerr.Configuration("no compilable sources in multi-file batch")
	}

	main := sources[0]
	rule := r.registry.ResolveBuiltin(filepath.Ext(main))
	if rule == nil {
		return runerr.Configuration("unsupported extension: %s", filepath.Ext(main))
	}

	flags := append([]string{}, r.cfg.ExtraFlags...)
	flags = append(flags, r.cfg.PresetFlags(rule.Name)...)
	includeFlags := compiler.IncludeDirs(headers)

	compileFlags := make([]string, 0, len(flags)+len(includeFlags))
	compileFlags = append(compileFlags, flags...)
	compileFlags = append(compileFlags, includeFlags...)

	coord := compiler.NewCoordinator(r.exec, r.objCache).WithLogger(r.logger)
	objects, buildErr := coord.BuildObjects(rule.Runner, sources, compileFlags)

	// Without a persistent cache the objects cannot serve future hits, so
	// they are transient even when the build failed part way.
	if r.cfg.NoCache {
		for _, obj := range objects {
			r.life.Register(obj)
		}
	}

	if buildErr != nil {
		return buildErr
	}

	target, err := ExecutablePath(main)
	if err != nil {
		return err
	}

	if err := compiler.Link(r.exec, rule.Runner, objects, target, flags, includeFlags); err != nil {
		return err
	}

	r.life.Register(target)

	return r.executeBinary(target, r.cfg.RunArgs)
}

// runInterpreted runs a source file directly through its interpreter.
func (r *Runner) runInterpreted(rule *toolchain.Rule, file string) error {
	argv := []string{rule.Runner}
	argv = append(argv, rule.Subcommand...)
	argv = append(argv, rule.Flags...)
	argv = append(argv, r.cfg.ExtraFlags...)
	argv = append(argv, r.cfg.PresetFlags(rule.Name)...)
	argv = append(argv, file)
	argv = append(argv, rule.Arguments...)
	argv = append(argv, r.cfg.RunArgs...)

	if err := r.exec.Run("RUN", argv); err != nil {
		return runerr.Wrap(runerr.KindExecution, err, "%s failed", file)
	}

	return nil
}

// executeBinary runs the produced executable. A missing target is an
// execution error; under dry-run nothing was produced, so the existence
// check is skipped.
func (r *Runner) executeBinary(target string, args []string) error {
	if !r.cfg.DryRun {
		if _, err := os.Stat(target); err != nil {
			return runerr.Execution("executable not found: %s", target)
		}
	}

	argv := append([]string{target}, args...)

	if err := r.exec.Run("RUN", argv); err != nil {
		return runerr.Wrap(runerr.KindExecution, err, "%s failed", filepath.Base(target))
	}

	return nil
}

// partition splits a batch into C-family sources, headers and everything
// else, preserving order. The first source is the batch's primary file.
func partition(files []string) (sources, headers, foreign []string) {
	for _, f := range files {
		ext := filepath.Ext(f)

		switch {
		case toolchain.IsCFamilySource(ext):
			sources = append(sources, f)
		case toolchain.IsCFamilyHeader(ext):
			headers = append(headers, f)
		default:
			foreign = append(foreign, f)
		}
	}

	return sources, headers, foreign
}

// ExecutablePath derives the executable path for a primary source file:
// the source's base name with .exe on Windows and .out elsewhere, resolved
// in the working directory.
func ExecutablePath(source string) (string, error) {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	ext := ".out"
	if runtime.GOOS == "windows" {
		ext = ".exe"
	}

	return filepath.Abs(stem + ext)
}
