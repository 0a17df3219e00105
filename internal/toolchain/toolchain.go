// Package toolchain resolves how a source file is built or run. Built-in
// rules cover the C family and Java; user-declared languages are merged in
// from configuration and validated once at load time.
package toolchain

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/kuranne/run/internal/runerr"
	"github.com/kuranne/run/internal/utils"
)

// Mode is a rule's execution mode.
type Mode string

const (
	// ModeInterpreter runs the source directly through the runner command.
	ModeInterpreter Mode = "interpreter"

	// ModeCompiler compiles the source to an executable before running it.
	ModeCompiler Mode = "compiler"
)

// Rule describes how one language's files are built or run.
type Rule struct {
	// Name of the language (config section name for custom rules)
	Name string

	// Extensions recognized for this language, including the leading dot
	Extensions []string

	// Runner is the compiler or interpreter command
	Runner string

	// Mode selects interpreter or compiler behavior
	Mode Mode

	// Flags are language-level flags from the rule declaration
	Flags []string

	// Subcommand tokens inserted after the runner command (e.g. "jar run")
	Subcommand []string

	// Arguments appended after the source file for interpreter runs
	Arguments []string
}

// Matches reports whether the rule claims an extension. Matching is exact
// and case-sensitive on the raw suffix.
func (r *Rule) Matches(ext string) bool {
	for _, e := range r.Extensions {
		if e == ext {
			return true
		}
	}

	return false
}

var cFamilySourceExts = map[string]string{
	".c":   "c",
	".cpp": "cpp",
	".cc":  "cpp",
	".cxx": "cpp",
}

var cFamilyHeaderExts = map[string]bool{
	".h":   true,
	".hpp": true,
}

// IsCFamilySource reports whether ext is a compilable C/C++ source suffix.
func IsCFamilySource(ext string) bool {
	_, ok := cFamilySourceExts[ext]
	return ok
}

// IsCFamilyHeader reports whether ext is a C/C++ header suffix. Headers are
// never compiled; their parent directories seed include paths.
func IsCFamilyHeader(ext string) bool {
	return cFamilyHeaderExts[ext]
}

// Registry resolves extensions to rules. Built-in rules take precedence for
// their own extensions; custom rules are consulted only when no built-in
// rule exists. Immutable after construction.
type Registry struct {
	builtin []Rule
	custom  []Rule
}

// NewRegistry builds a registry from runner-command overrides (language name
// to command) and an ordered list of validated custom rules.
func NewRegistry(runners map[string]string, custom []Rule) *Registry {
	pick := func(lang, fallback string) string {
		if cmd, ok := runners[lang]; ok && cmd != "" {
			return cmd
		}

		return fallback
	}

	builtin := []Rule{
		{
			Name:       "c",
			Extensions: []string{".c"},
			Runner:     pick("c", "gcc"),
			Mode:       ModeCompiler,
		},
		{
			Name:       "cpp",
			Extensions: []string{".cpp", ".cc", ".cxx"},
			Runner:     pick("cpp", "g++"),
			Mode:       ModeCompiler,
		},
		{
			Name:       "java",
			Extensions: []string{".java"},
			Runner:     pick("java", "java"),
			Mode:       ModeInterpreter,
		},
	}

	return &Registry{
		builtin: builtin,
		custom:  custom,
	}
}

// ResolveBuiltin returns the built-in rule for an extension, or nil.
func (rg *Registry) ResolveBuiltin(ext string) *Rule {
	for i := range rg.builtin {
		if rg.builtin[i].Matches(ext) {
			return &rg.builtin[i]
		}
	}

	return nil
}

// ResolveCustom returns the first user-declared rule matching an extension,
// or nil.
func (rg *Registry) ResolveCustom(ext string) *Rule {
	for i := range rg.custom {
		if rg.custom[i].Matches(ext) {
			return &rg.custom[i]
		}
	}

	return nil
}

// Resolve returns the rule for an extension: built-in first, then custom.
// Returns a configuration error when nothing claims the extension.
func (rg *Registry) Resolve(ext string) (*Rule, error) {
	if r := rg.ResolveBuiltin(ext); r != nil {
		return r, nil
	}

	if r := rg.ResolveCustom(ext); r != nil {
		return r, nil
	}

	return nil, runerr.Configuration("unsupported extension: %s", ext)
}

// ParseLanguages validates and converts the raw [language] configuration
// table into rules. Each section must be a table with a non-empty
// extensions list, a runner command and (if present) a type of interpreter
// or compiler. Runs once at load time so a malformed declaration fails
// before any build work begins.
func ParseLanguages(raw map[string]any) ([]Rule, error) {
	var rules []Rule

	// Stable declaration order: config maps are unordered, but resolution
	// is first-match-wins.
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		section := raw[name]

		table, ok := section.(map[string]any)
		if !ok {
			return nil, runerr.Configuration("language %q: declaration must be a table", name)
		}

		rule := Rule{
			Name:       name,
			Extensions: cast.ToStringSlice(table["extensions"]),
			Runner:     cast.ToString(table["runner"]),
			Flags:      cast.ToStringSlice(table["flags"]),
			Arguments:  cast.ToStringSlice(table["arguments"]),
			Mode:       ModeInterpreter,
		}

		if sub := cast.ToString(table["subcommand"]); sub != "" {
			rule.Subcommand = utils.SplitFlags(sub)
		}

		if t, present := table["type"]; present {
			mode := Mode(cast.ToString(t))
			if mode != ModeInterpreter && mode != ModeCompiler {
				return nil, runerr.Configuration("language %q: unknown type %q", name, cast.ToString(t))
			}

			rule.Mode = mode
		}

		if len(rule.Extensions) == 0 {
			return nil, runerr.Configuration("language %q: extensions list is empty", name)
		}

		if rule.Runner == "" {
			return nil, runerr.Configuration("language %q: no runner specified", name)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// String implements fmt.Stringer for diagnostics.
func (r *Rule) String() string {
	return fmt.Sprintf("%s (%s, %v)", r.Name, r.Mode, r.Extensions)
}
