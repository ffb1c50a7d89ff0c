// Package iam provides typed AWS::IAM resources.
package iam

// Role represents AWS::IAM::Role.
type Role struct {
	RoleName                 any           `json:"RoleName,omitempty"`
	Path                     any           `json:"Path,omitempty"`
	AssumeRolePolicyDocument any           `json:"AssumeRolePolicyDocument,omitempty"`
	ManagedPolicyArns        []any         `json:"ManagedPolicyArns,omitempty"`
	Policies                 []Role_Policy `json:"Policies,omitempty"`
	Tags                     []any         `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Role) ResourceType() string { return "AWS::IAM::Role" }

// Role_Policy is an inline policy embedded in a role.
type Role_Policy struct {
	PolicyName     any `json:"PolicyName,omitempty"`
	PolicyDocument any `json:"PolicyDocument,omitempty"`
}

// Policy represents AWS::IAM::Policy.
type Policy struct {
	PolicyName     any   `json:"PolicyName,omitempty"`
	PolicyDocument any   `json:"PolicyDocument,omitempty"`
	Roles          []any `json:"Roles,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Policy) ResourceType() string { return "AWS::IAM::Policy" }

// InstanceProfile represents AWS::IAM::InstanceProfile.
type InstanceProfile struct {
	InstanceProfileName any   `json:"InstanceProfileName,omitempty"`
	Path                any   `json:"Path,omitempty"`
	Roles               []any `json:"Roles,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r InstanceProfile) ResourceType() string { return "AWS::IAM::InstanceProfile" }
