// Package refresolve extracts man-page identifiers from reference
// tokens and validates them, either against an apropos snapshot or by
// shelling out to a configurable verify command.
package refresolve

import (
	"os/exec"
	"strings"

	"github.com/dgouders/lsp/internal/refcache"
	"github.com/rs/zerolog"
)

// Ref is a parsed man-page reference: name plus an optional section.
type Ref struct {
	Name    string
	Section string
}

// String renders the canonical "name(section)" spelling, or bare name
// when Section is empty.
func (r Ref) String() string {
	if r.Section == "" {
		return r.Name
	}
	return r.Name + "(" + r.Section + ")"
}

// Parse accepts four forms:
//
//	"name(section)", "name.section", "section name", "name"
func Parse(s string) Ref {
	s = strings.TrimSpace(s)

	if i := strings.IndexByte(s, '('); i >= 0 && strings.HasSuffix(s, ")") {
		return Ref{Name: s[:i], Section: s[i+1 : len(s)-1]}
	}
	if fields := strings.Fields(s); len(fields) == 2 && isSection(fields[0]) {
		return Ref{Name: fields[1], Section: fields[0]}
	}
	if i := strings.LastIndexByte(s, '.'); i > 0 && isSection(s[i+1:]) {
		return Ref{Name: s[:i], Section: s[i+1:]}
	}
	return Ref{Name: s}
}

func isSection(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == 'n' {
		return len(s) == 1
	}
	if s[0] < '0' || s[0] > '9' {
		return false
	}
	return true
}

// Canonicalize folds a reference to the spelling used as the GRef cache
// key: lower-cased unless manCaseSensitive, section normalized into the
// "name(section)" spelling.
//
// Open question: toggling --man-case after references have
// already been interned under the other casing leaves the earlier
// entries under their original key; we don't retroactively re-key them.
func Canonicalize(ref Ref, manCaseSensitive bool) string {
	s := ref.String()
	if !manCaseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// VerifyCommand is the %n/%s-templated shell command used to validate a
// reference when apropos-backed validation is off. The default:
// "man -w %s %n > /dev/null 2>&1". It runs with no timeout — a slow
// verify command blocks the UI, and that is deliberate and bounded only
// by user patience.
type VerifyCommand struct {
	Template string
}

// DefaultVerifyCommand is the built-in default verify command.
const DefaultVerifyCommand = "man -w %s %n > /dev/null 2>&1"

// Resolver validates references, consulting the GRef cache first and
// memoizing whatever it determines.
type Resolver struct {
	Cache            *refcache.Cache
	ManCaseSensitive bool
	UseApropos       bool
	// Disabled is --no-verify: every candidate is treated as
	// valid without consulting the cache or a verify command at all.
	Disabled  bool
	VerifyCmd VerifyCommand
	Log       zerolog.Logger
}

// New builds a Resolver with the default verify command.
func New(cache *refcache.Cache) *Resolver {
	return &Resolver{
		Cache:     cache,
		VerifyCmd: VerifyCommand{Template: DefaultVerifyCommand},
		Log:       zerolog.Nop(),
	}
}

// Validate returns whether ref is a valid man-page reference, consulting
// (and updating) the GRef cache.
func (r *Resolver) Validate(ref Ref) bool {
	if r.Disabled {
		return true
	}
	key := Canonicalize(ref, r.ManCaseSensitive)
	g := r.Cache.Search(key)

	if g.State != refcache.Unknown {
		return g.State == refcache.Valid
	}

	if r.UseApropos {
		// apropos validation only ever marks entries Valid up front (via
		// cmd_apropos); anything still Unknown after the snapshot loaded
		// is, by construction, not listed.
		g.State = refcache.Invalid
		return false
	}

	if r.exec(ref) {
		g.State = refcache.Valid
		return true
	}
	g.State = refcache.Invalid
	return false
}

// exec runs the configured verify command with %n/%s substituted,
// returning true iff it exits 0.
func (r *Resolver) exec(ref Ref) bool {
	cmdline := ExpandTemplate(r.VerifyCmd.Template, ref.Name, ref.Section)
	if cmdline == "" {
		return false
	}

	cmd := exec.Command("/bin/sh", "-c", cmdline)
	if err := cmd.Run(); err != nil {
		r.Log.Debug().Str("cmd", cmdline).Err(err).Msg("verify command failed")
		return false
	}
	return true
}

// ExpandTemplate substitutes %n (name) and %s (section) into tmpl. An
// empty section collapses an adjacent "." or "(" the way exec_man's
// templating does for the load-command analogue, so
// "%n.%s" with an empty section becomes "%n" rather than "name.".
func ExpandTemplate(tmpl, name, section string) string {
	out := strings.ReplaceAll(tmpl, "%n", name)
	if section == "" {
		out = strings.ReplaceAll(out, ".%s", "")
		out = strings.ReplaceAll(out, "(%s)", "")
	}
	out = strings.ReplaceAll(out, "%s", section)
	return out
}

// ValidateTemplate checks that tmpl contains exactly one %n and one %s —
// the constraint --reload-command/--verify-command must satisfy.
func ValidateTemplate(tmpl string) bool {
	return strings.Count(tmpl, "%n") == 1 && strings.Count(tmpl, "%s") == 1
}
