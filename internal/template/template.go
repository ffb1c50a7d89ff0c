// Package template builds CloudFormation templates from the resources a stack collected.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/internal/serialize"
)

// Entry is a resource registered under a logical ID.
type Entry struct {
	LogicalID           string
	Construct           string
	Resource            wetwire.Resource
	DependsOn           []string
	DeletionPolicy      string
	UpdateReplacePolicy string
}

// Builder constructs CloudFormation templates from registered entries.
type Builder struct {
	description string
	entries     map[string]Entry
	parameters  map[string]wetwire.Parameter
	outputs     map[string]wetwire.Output
	tags        map[string]string

	// filled by Build
	props map[string]map[string]any
	deps  map[string][]string
}

// NewBuilder creates a template builder.
func NewBuilder(description string) *Builder {
	return &Builder{
		description: description,
		entries:     make(map[string]Entry),
		parameters:  make(map[string]wetwire.Parameter),
		outputs:     make(map[string]wetwire.Output),
		tags:        make(map[string]string),
	}
}

// AddResource registers a resource. Logical IDs must be unique across
// resources and parameters.
func (b *Builder) AddResource(e Entry) error {
	if e.LogicalID == "" {
		return errors.New("resource has no logical ID")
	}
	if e.Resource == nil {
		return fmt.Errorf("resource %s is nil", e.LogicalID)
	}
	if b.exists(e.LogicalID) {
		return fmt.Errorf("logical ID %s is already in use", e.LogicalID)
	}
	b.entries[e.LogicalID] = e
	return nil
}

// AddParameter registers a template parameter.
func (b *Builder) AddParameter(name string, p wetwire.Parameter) error {
	if b.exists(name) {
		return fmt.Errorf("logical ID %s is already in use", name)
	}
	if p.Type == "" {
		p.Type = "String"
	}
	b.parameters[name] = p
	return nil
}

// AddOutput registers a template output.
func (b *Builder) AddOutput(name string, o wetwire.Output) error {
	if _, ok := b.outputs[name]; ok {
		return fmt.Errorf("output %s is already in use", name)
	}
	b.outputs[name] = o
	return nil
}

// SetDescription sets the template description.
func (b *Builder) SetDescription(description string) {
	b.description = description
}

// SetTag adds a tag applied to every resource with a Tags list.
func (b *Builder) SetTag(key, value string) {
	b.tags[key] = value
}

func (b *Builder) exists(name string) bool {
	_, isResource := b.entries[name]
	_, isParam := b.parameters[name]
	return isResource || isParam
}

// Build constructs the CloudFormation template and returns the resources in
// dependency order.
func (b *Builder) Build() (*wetwire.Template, []wetwire.ResourceNode, error) {
	b.props = make(map[string]map[string]any, len(b.entries))
	b.deps = make(map[string][]string, len(b.entries))
	attrDeps := make(map[string][]string, len(b.entries))

	for name, e := range b.entries {
		props, err := b.serializeResource(e)
		if err != nil {
			return nil, nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		b.props[name] = props

		refs, attrRefs := serialize.References(props)
		deps := make(map[string]bool)
		for _, ref := range refs {
			if _, isParam := b.parameters[ref]; isParam {
				continue
			}
			if _, ok := b.entries[ref]; !ok {
				return nil, nil, fmt.Errorf("%s references undefined resource %s", name, ref)
			}
			deps[ref] = true
		}
		for _, dep := range e.DependsOn {
			if _, ok := b.entries[dep]; !ok {
				return nil, nil, fmt.Errorf("%s depends on undefined resource %s", name, dep)
			}
			deps[dep] = true
		}
		delete(deps, name)

		for dep := range deps {
			b.deps[name] = append(b.deps[name], dep)
		}
		sort.Strings(b.deps[name])
		attrDeps[name] = attrRefs
	}

	order, err := b.topologicalSort()
	if err != nil {
		return nil, nil, err
	}

	template := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              b.description,
		Resources:                make(map[string]wetwire.ResourceDef, len(b.entries)),
	}

	if len(b.parameters) > 0 {
		template.Parameters = make(map[string]wetwire.Parameter, len(b.parameters))
		for name, p := range b.parameters {
			template.Parameters[name] = p
		}
	}

	nodes := make([]wetwire.ResourceNode, 0, len(order))
	for _, name := range order {
		e := b.entries[name]

		var dependsOn []string
		if len(e.DependsOn) > 0 {
			dependsOn = append(dependsOn, e.DependsOn...)
			sort.Strings(dependsOn)
		}

		template.Resources[name] = wetwire.ResourceDef{
			Type:                e.Resource.ResourceType(),
			Properties:          b.props[name],
			DependsOn:           dependsOn,
			DeletionPolicy:      e.DeletionPolicy,
			UpdateReplacePolicy: e.UpdateReplacePolicy,
		}

		nodes = append(nodes, wetwire.ResourceNode{
			LogicalID:        name,
			Type:             e.Resource.ResourceType(),
			Construct:        e.Construct,
			Dependencies:     b.deps[name],
			AttrDependencies: attrDeps[name],
		})
	}

	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]wetwire.Output, len(b.outputs))
		for name, o := range b.outputs {
			output, err := serializeOutput(o)
			if err != nil {
				return nil, nil, fmt.Errorf("serializing output %s: %w", name, err)
			}
			template.Outputs[name] = output
		}
	}

	return template, nodes, nil
}

// serializeResource converts a resource struct to CloudFormation properties
// and merges in the builder-wide tags.
func (b *Builder) serializeResource(e Entry) (map[string]any, error) {
	props, err := serialize.Resource(e.Resource)
	if err != nil {
		return nil, err
	}
	if props == nil {
		props = make(map[string]any)
	}

	if len(b.tags) > 0 && hasTagList(e.Resource) {
		props["Tags"] = mergeTags(props["Tags"], b.tags)
	}

	if len(props) == 0 {
		return nil, nil
	}
	return props, nil
}

// serializeOutput normalizes the output value to plain JSON values.
func serializeOutput(o wetwire.Output) (wetwire.Output, error) {
	data, err := json.Marshal(o.Value)
	if err != nil {
		return o, err
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return o, err
	}
	o.Value = value
	return o, nil
}

// hasTagList reports whether the resource takes a list of Key/Value tags.
func hasTagList(r wetwire.Resource) bool {
	t := reflect.TypeOf(r)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	f, ok := t.FieldByName("Tags")
	if !ok {
		return false
	}
	return f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() == reflect.Interface
}

// mergeTags appends the builder tags whose keys the resource did not set itself.
func mergeTags(existing any, tags map[string]string) []any {
	var result []any
	seen := make(map[string]bool)
	if list, ok := existing.([]any); ok {
		for _, t := range list {
			if m, ok := t.(map[string]any); ok {
				if k, ok := m["Key"].(string); ok {
					seen[k] = true
				}
			}
			result = append(result, t)
		}
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if seen[k] {
			continue
		}
		result = append(result, map[string]any{"Key": k, "Value": tags[k]})
	}
	return result
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.entries {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name, deps := range b.deps {
		for _, dep := range deps {
			graph[dep] = append(graph[dep], name)
			inDegree[name]++
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.entries) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.deps[node] {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !visited[name] {
			if findCycle(name) {
				break
			}
		}
	}

	if len(cycle) > 0 {
		var sb strings.Builder
		sb.WriteString("circular dependency detected:\n")
		for i, name := range cycle {
			fmt.Fprintf(&sb, "  %s (%s)", name, b.entries[name].Construct)
			if i < len(cycle)-1 {
				sb.WriteString("\n    → ")
			}
		}
		return errors.New(sb.String())
	}

	return errors.New("circular dependency detected")
}

// ToJSON serializes the template to JSON.
func ToJSON(t *wetwire.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *wetwire.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
