// Package lambda provides typed AWS::Lambda resources.
package lambda

// Function represents AWS::Lambda::Function.
type Function struct {
	FunctionName  any                   `json:"FunctionName,omitempty"`
	Description   any                   `json:"Description,omitempty"`
	Handler       any                   `json:"Handler,omitempty"`
	Runtime       any                   `json:"Runtime,omitempty"`
	Role          any                   `json:"Role,omitempty"`
	Architectures []any                 `json:"Architectures,omitempty"`
	Code          *Function_Code        `json:"Code,omitempty"`
	Timeout       any                   `json:"Timeout,omitempty"`
	MemorySize    any                   `json:"MemorySize,omitempty"`
	Environment   *Function_Environment `json:"Environment,omitempty"`
	Tags          []any                 `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Function) ResourceType() string { return "AWS::Lambda::Function" }

// Function_Code locates the deployment package in S3.
type Function_Code struct {
	S3Bucket any `json:"S3Bucket,omitempty"`
	S3Key    any `json:"S3Key,omitempty"`
}

// Function_Environment holds function environment variables.
type Function_Environment struct {
	Variables map[string]any `json:"Variables,omitempty"`
}
