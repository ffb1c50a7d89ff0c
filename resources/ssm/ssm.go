// Package ssm provides typed AWS::SSM resources.
package ssm

// Parameter represents AWS::SSM::Parameter.
type Parameter struct {
	Name        any            `json:"Name,omitempty"`
	Description any            `json:"Description,omitempty"`
	Type        any            `json:"Type,omitempty"`
	Value       any            `json:"Value,omitempty"`
	Tags        map[string]any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Parameter) ResourceType() string { return "AWS::SSM::Parameter" }
