// Package validation checks synthesized templates.
//
// Two passes run:
//   - structural checks on the template model (dangling references, duplicate exports)
//   - cfn-lint-go on the rendered template (library dependency)
package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/internal/serialize"
)

// Result contains the issues found in a template.
type Result struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r Result) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// Options configures validation.
type Options struct {
	// IgnoreRules drops cfn-lint findings with these rule IDs.
	IgnoreRules []string
	// SkipLint runs the structural checks only.
	SkipLint bool
}

// Template validates a synthesized template.
func Template(tmpl *wetwire.Template, opts Options) (*Result, error) {
	result := &Result{
		Errors:        Structural(tmpl),
		Warnings:      []string{},
		Informational: []string{},
	}

	if !opts.SkipLint {
		dir, err := os.MkdirTemp("", "wetwire-validate-")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)

		data, err := json.MarshalIndent(tmpl, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("rendering template: %w", err)
		}
		path := filepath.Join(dir, "template.json")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return nil, fmt.Errorf("writing template: %w", err)
		}

		lintResult, err := lintFile(path, opts, registryResources(tmpl))
		if err != nil {
			return nil, err
		}
		result.Errors = append(result.Errors, lintResult.Errors...)
		result.Warnings = append(result.Warnings, lintResult.Warnings...)
		result.Informational = append(result.Informational, lintResult.Informational...)
	}

	result.Passed = len(result.Errors) == 0
	return result, nil
}

// File runs cfn-lint-go on a template file.
func File(templatePath string, opts Options) (*Result, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &Result{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}
	return lintFile(templatePath, opts, nil)
}

// lintFile lints path. Findings under the resources in skip are dropped:
// the linter has no schema for registry and custom types.
func lintFile(path string, opts Options, skip map[string]bool) (*Result, error) {
	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(path)
	if err != nil {
		return &Result{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	ignored := make(map[string]bool, len(opts.IgnoreRules))
	for _, id := range opts.IgnoreRules {
		ignored[id] = true
	}

	result := &Result{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}
	for _, match := range matches {
		if ignored[match.Rule.ID] || skip[matchResource(match)] {
			continue
		}
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Passed if no errors (warnings are acceptable)
	result.Passed = len(result.Errors) == 0
	return result, nil
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

// matchResource returns the logical ID a match points at, if any.
func matchResource(match lint.Match) string {
	p := match.Location.Path
	if len(p) >= 2 && fmt.Sprint(p[0]) == "Resources" {
		return fmt.Sprint(p[1])
	}
	return ""
}

// registryResources returns the resources whose type is not AWS::*.
func registryResources(tmpl *wetwire.Template) map[string]bool {
	out := make(map[string]bool)
	for id, r := range tmpl.Resources {
		if !strings.HasPrefix(r.Type, "AWS::") {
			out[id] = true
		}
	}
	return out
}

// Structural reports references to logical IDs the template does not
// define and duplicated export names.
func Structural(tmpl *wetwire.Template) []string {
	var errs []string
	if len(tmpl.Resources) == 0 {
		errs = append(errs, "template has no resources")
	}

	defined := func(name string) bool {
		if _, ok := tmpl.Resources[name]; ok {
			return true
		}
		_, ok := tmpl.Parameters[name]
		return ok
	}

	ids := make([]string, 0, len(tmpl.Resources))
	for id := range tmpl.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		r := tmpl.Resources[id]
		if r.Type == "" {
			errs = append(errs, fmt.Sprintf("%s: missing Type", id))
		}
		refs, _ := serialize.References(r.Properties)
		for _, ref := range refs {
			if !defined(ref) {
				errs = append(errs, fmt.Sprintf("%s: reference to undefined %s", id, ref))
			}
		}
		for _, dep := range r.DependsOn {
			if _, ok := tmpl.Resources[dep]; !ok {
				errs = append(errs, fmt.Sprintf("%s: DependsOn undefined %s", id, dep))
			}
		}
	}

	outputs := make([]string, 0, len(tmpl.Outputs))
	for name := range tmpl.Outputs {
		outputs = append(outputs, name)
	}
	sort.Strings(outputs)

	exports := make(map[string]string)
	for _, name := range outputs {
		o := tmpl.Outputs[name]
		refs, _ := serialize.References(map[string]any{"Value": jsonValue(o.Value)})
		for _, ref := range refs {
			if !defined(ref) {
				errs = append(errs, fmt.Sprintf("output %s: reference to undefined %s", name, ref))
			}
		}
		if o.Export == nil {
			continue
		}
		if prev, ok := exports[o.Export.Name]; ok {
			errs = append(errs, fmt.Sprintf("outputs %s and %s export the same name %q", prev, name, o.Export.Name))
			continue
		}
		exports[o.Export.Name] = name
	}
	return errs
}

// jsonValue converts typed intrinsics to their JSON shape.
func jsonValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
