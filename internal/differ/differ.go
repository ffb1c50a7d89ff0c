// Package differ provides semantic comparison of CloudFormation templates.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Result contains the difference between two templates.
type Result struct {
	Diff    wetwire.TemplateDiff
	Summary wetwire.DiffSummary
	// Outputs and Parameters list changed entries as "<name> added",
	// "<name> removed" or "<name> modified".
	Outputs    []string
	Parameters []string
}

// Empty reports whether the templates are equivalent.
func (r *Result) Empty() bool {
	return r.Summary.Total == 0 && len(r.Outputs) == 0 && len(r.Parameters) == 0
}

// Compare compares two CloudFormation templates and returns differences.
func Compare(template1, template2 *wetwire.Template, opts Options) (*Result, error) {
	result := &Result{}

	res1 := template1.Resources
	res2 := template2.Resources

	for name, def := range res2 {
		if _, exists := res1[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, wetwire.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def := range res1 {
		if _, exists := res2[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, wetwire.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def1 := range res1 {
		if def2, exists := res2[name]; exists {
			changes := compareResources(def1, def2, opts)
			if len(changes) > 0 {
				result.Diff.Modified = append(result.Diff.Modified, wetwire.DiffEntry{
					Resource: name,
					Type:     def2.Type,
					Changes:  changes,
				})
			}
		}
	}

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = wetwire.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	result.Outputs = compareNamed(toAnyMap(template1.Outputs), toAnyMap(template2.Outputs), opts)
	result.Parameters = compareNamed(toAnyMap(template1.Parameters), toAnyMap(template2.Parameters), opts)

	return result, nil
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := LoadTemplate(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := LoadTemplate(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// LoadTemplate loads a CloudFormation template from a JSON or YAML file.
// Short-form YAML intrinsics (!Ref) are not supported.
func LoadTemplate(path string) (*wetwire.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTemplate(data)
}

// ParseTemplate decodes a JSON or YAML template. Values are normalized to
// their JSON form so templates synthesized in memory compare equal to ones
// read back from disk.
func ParseTemplate(data []byte) (*wetwire.Template, error) {
	var template wetwire.Template
	if err := json.Unmarshal(data, &template); err != nil {
		if err := yaml.Unmarshal(data, &template); err != nil {
			return nil, fmt.Errorf("failed to parse as JSON or YAML: %w", err)
		}
		return Normalize(&template)
	}
	return &template, nil
}

// Normalize round-trips t through JSON, turning typed values into the
// map[string]any, []any, float64 shapes json.Unmarshal produces.
func Normalize(t *wetwire.Template) (*wetwire.Template, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var out wetwire.Template
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func compareResources(def1, def2 wetwire.ResourceDef, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)

	if !equalStringSlices(sorted(def1.DependsOn), sorted(def2.DependsOn)) {
		changes = append(changes, "DependsOn changed")
	}
	if def1.DeletionPolicy != def2.DeletionPolicy {
		changes = append(changes, fmt.Sprintf("DeletionPolicy changed: %q → %q", def1.DeletionPolicy, def2.DeletionPolicy))
	}
	if def1.UpdateReplacePolicy != def2.UpdateReplacePolicy {
		changes = append(changes, fmt.Sprintf("UpdateReplacePolicy changed: %q → %q", def1.UpdateReplacePolicy, def2.UpdateReplacePolicy))
	}

	return changes
}

// compareProperties recursively compares property maps. Nested maps are
// descended into so changes carry the full dotted path.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	for key, val2 := range props2 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		val1, exists := props1[key]
		if !exists {
			changes = append(changes, fmt.Sprintf("%s added", path))
			continue
		}
		m1, ok1 := val1.(map[string]any)
		m2, ok2 := val2.(map[string]any)
		if ok1 && ok2 && !isIntrinsic(m1) && !isIntrinsic(m2) {
			changes = append(changes, compareProperties(path, m1, m2, opts)...)
			continue
		}
		if !deepEqual(val1, val2, opts) {
			changes = append(changes, fmt.Sprintf("%s modified", path))
		}
	}

	for key := range props1 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", path))
		}
	}

	sort.Strings(changes)
	return changes
}

// compareNamed compares top-level sections keyed by name.
func compareNamed(a, b map[string]any, opts Options) []string {
	var changes []string
	for name, v2 := range b {
		v1, ok := a[name]
		switch {
		case !ok:
			changes = append(changes, name+" added")
		case !deepEqual(v1, v2, opts):
			changes = append(changes, name+" modified")
		}
	}
	for name := range a {
		if _, ok := b[name]; !ok {
			changes = append(changes, name+" removed")
		}
	}
	sort.Strings(changes)
	return changes
}

func toAnyMap[V any](in map[string]V) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		data, err := json.Marshal(v)
		if err != nil {
			out[k] = v
			continue
		}
		var decoded any
		if err := json.Unmarshal(data, &decoded); err != nil {
			out[k] = v
			continue
		}
		out[k] = decoded
	}
	return out
}

// isIntrinsic reports whether m is a single-key Ref or Fn:: call, which is
// compared as a whole.
func isIntrinsic(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	for k := range m {
		return k == "Ref" || strings.HasPrefix(k, "Fn::")
	}
	return false
}

// deepEqual compares two values deeply, optionally ignoring order.
func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalizeValue(a)
		b = normalizeValue(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeValue sorts every list by the JSON encoding of its elements.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = normalizeValue(item)
		}
		sort.SliceStable(result, func(i, j int) bool {
			return encode(result[i]) < encode(result[j])
		})
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = normalizeValue(v)
		}
		return result
	default:
		return v
	}
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// equalStringSlices compares two string slices for equality.
func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// sortEntries sorts diff entries by resource name.
func sortEntries(entries []wetwire.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
