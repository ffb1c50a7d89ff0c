// Package custom provisions the Lambda functions that back the custom
// resources used by the other constructs. Every custom resource kind gets
// one function per stack, shared by all resources of that kind.
package custom

import (
	"fmt"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/cloudformation"
	"github.com/lex00/wetwire-aws-constructs-go/resources/iam"
	"github.com/lex00/wetwire-aws-constructs-go/resources/lambda"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// Custom resource types served by cmd/custom-resource-handler.
const (
	TypeSubnetTagging        = "Custom::SubnetTagging"
	TypeVpcPeeringRoutes     = "Custom::VpcPeeringRoutes"
	TypeVpcPeerDnsResolution = "Custom::VpcPeerDnsResolution"
	TypeVpcPeeringAccepter   = "Custom::VpcPeeringAccepter"
	TypeEksCleanup           = "Custom::EksCleanup"
)

// HandlerRuntime is the Lambda runtime the handler bundle is built for.
const HandlerRuntime = "provided.al2023"

const (
	handlerEntry   = "bootstrap"
	defaultTimeout = 300

	codeKey = "custom-resource-handler/code"
)

// Code locates the handler bundle in S3.
type Code struct {
	Bucket any
	Key    any
}

// SetCode fixes the handler bundle location for every provider in s.
// Without it the first provider adds HandlerCodeBucket and HandlerCodeKey
// parameters to the template.
func SetCode(s *stack.Stack, bucket, key string) error {
	_, err := s.Singleton(codeKey, func() (any, error) {
		return Code{Bucket: bucket, Key: key}, nil
	})
	return err
}

func code(s *stack.Stack) (Code, error) {
	v, err := s.Singleton(codeKey, func() (any, error) {
		root := s.Root()
		bucket, err := root.AddParameter("HandlerCodeBucket", wetwire.Parameter{
			Description: "S3 bucket holding the custom resource handler bundle",
		})
		if err != nil {
			return nil, err
		}
		key, err := root.AddParameter("HandlerCodeKey", wetwire.Parameter{
			Description: "S3 key of the custom resource handler bundle",
			Default:     "custom-resource-handler.zip",
		})
		if err != nil {
			return nil, err
		}
		return Code{Bucket: bucket, Key: key}, nil
	})
	if err != nil {
		return Code{}, err
	}
	return v.(Code), nil
}

// ProviderProps describes the permissions a handler kind needs.
type ProviderProps struct {
	// ResourceType is one of the Type constants.
	ResourceType string
	Statements   []PolicyStatement
	Timeout      int
}

// Provider is the function behind a custom resource kind.
type Provider struct {
	Function stack.Handle
	Role     stack.Handle
}

// ServiceToken returns the value custom resources pass as ServiceToken.
func (p *Provider) ServiceToken() GetAtt {
	return p.Function.GetAtt("Arn")
}

// ProviderFor returns the provider for props.ResourceType, creating it at
// the stack root on first use.
func ProviderFor(scope *stack.Scope, props ProviderProps) (*Provider, error) {
	if props.ResourceType == "" {
		return nil, fmt.Errorf("custom resource provider needs a resource type")
	}
	s := scope.Stack()
	v, err := s.Singleton("custom-resource-provider/"+props.ResourceType, func() (any, error) {
		return newProvider(s, props)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Provider), nil
}

func newProvider(s *stack.Stack, props ProviderProps) (*Provider, error) {
	c, err := code(s)
	if err != nil {
		return nil, err
	}

	kind := props.ResourceType[len("Custom::"):]
	scope := s.Root().Child(kind + "Provider")

	var policies []iam.Role_Policy
	if len(props.Statements) > 0 {
		statements := make([]any, len(props.Statements))
		for i, st := range props.Statements {
			statements[i] = st
		}
		policies = append(policies, iam.Role_Policy{
			PolicyName:     kind,
			PolicyDocument: NewPolicyDocument(statements...),
		})
	}

	role, err := scope.Add("Role", iam.Role{
		AssumeRolePolicyDocument: AssumeRolePolicy("lambda.amazonaws.com"),
		ManagedPolicyArns:        []any{ManagedPolicyArn("service-role/AWSLambdaBasicExecutionRole")},
		Policies:                 policies,
	})
	if err != nil {
		return nil, err
	}

	timeout := props.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	fn, err := scope.Add("Function", lambda.Function{
		Description:   fmt.Sprintf("Handles %s custom resources", props.ResourceType),
		Handler:       handlerEntry,
		Runtime:       HandlerRuntime,
		Architectures: []any{"arm64"},
		Role:          role.GetAtt("Arn"),
		Code:          &lambda.Function_Code{S3Bucket: c.Bucket, S3Key: c.Key},
		Timeout:       timeout,
		MemorySize:    128,
		Environment: &lambda.Function_Environment{Variables: map[string]any{
			"LOG_LEVEL": "info",
		}},
	})
	if err != nil {
		return nil, err
	}

	return &Provider{Function: fn, Role: role}, nil
}

// NewResource adds a custom resource served by provider.
func NewResource(scope *stack.Scope, id string, provider *Provider, resourceType string, properties map[string]any, opts ...stack.ResourceOption) (stack.Handle, error) {
	return scope.Add(id, cloudformation.CustomResource{
		Type:         resourceType,
		ServiceToken: provider.ServiceToken(),
		Properties:   properties,
	}, opts...)
}
