// Package wetwire_constructs provides reusable AWS infrastructure constructs
// that synthesize CloudFormation templates from plain Go.
//
// A construct is a function over a stack scope that adds a fixed topology of
// resources and returns a handle exposing the identifiers other constructs
// consume:
//
//	s := stack.New("network")
//	vpc, err := networking.NewVpc(s.Root(), "Main", networking.VpcProps{Seed: 10})
//	eks, err := compute.NewEks(s.Root(), "Cluster", compute.EksProps{Network: vpc})
//
// The wetwire-constructs CLI synthesizes the ready-made stacks in package
// stacks into CloudFormation JSON or YAML.
package wetwire_constructs

// Resource represents a CloudFormation resource.
// All resource types under resources/ (ec2.VPC, iam.Role, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::EC2::VPC")
	ResourceType() string
}

// ResourceNode describes a synthesized resource and the resources it depends on.
// The graph and list commands are driven by these.
type ResourceNode struct {
	// LogicalID is the CloudFormation logical ID
	LogicalID string
	// Type is the CloudFormation type (e.g., "AWS::EC2::Subnet")
	Type string
	// Construct is the scope path of the construct that added the resource
	Construct string
	// Dependencies are logical IDs referenced through Ref, GetAtt, Sub or DependsOn
	Dependencies []string
	// AttrDependencies is the subset of Dependencies referenced through GetAtt
	AttrDependencies []string
}

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type                string         `json:"Type" yaml:"Type"`
	Properties          map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn           []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy      string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
	UpdateReplacePolicy string         `json:"UpdateReplacePolicy,omitempty" yaml:"UpdateReplacePolicy,omitempty"`
}

// Parameter is a CloudFormation template parameter.
type Parameter struct {
	Type          string   `json:"Type" yaml:"Type"`
	Description   string   `json:"Description,omitempty" yaml:"Description,omitempty"`
	Default       any      `json:"Default,omitempty" yaml:"Default,omitempty"`
	AllowedValues []string `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
	NoEcho        bool     `json:"NoEcho,omitempty" yaml:"NoEcho,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string  `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any     `json:"Value" yaml:"Value"`
	Export      *Export `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// Export names an output for cross-stack Fn::ImportValue.
type Export struct {
	Name string `json:"Name" yaml:"Name"`
}

// SynthResult is the JSON output from `wetwire-constructs synth`.
type SynthResult struct {
	Success   bool     `json:"success"`
	Stack     string   `json:"stack"`
	Template  Template `json:"template,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ValidateResult is the JSON output from `wetwire-constructs validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `wetwire-constructs list`.
type ListResult struct {
	Stack     string         `json:"stack"`
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Construct string `json:"construct"`
}

// TemplateDiff groups the resources that differ between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffEntry is a single resource difference.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// DiffSummary counts the differences between two templates.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}
