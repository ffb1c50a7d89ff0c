package compute

import (
	"fmt"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/custom"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// EksCleanupProps configures NewEksCleanup.
type EksCleanupProps struct {
	VpcID       any
	ClusterName any
}

// EksCleanup removes the network interfaces and security groups a deleted
// cluster leaves in its VPC.
type EksCleanup struct {
	resource stack.Handle
}

// NewEksCleanup adds the cleanup custom resource. It does nothing on create
// and update. Make the cluster depend on it so that CloudFormation deletes it
// after the cluster.
func NewEksCleanup(scope *stack.Scope, id string, props EksCleanupProps, opts ...stack.ResourceOption) (*EksCleanup, error) {
	if props.VpcID == nil || props.ClusterName == nil {
		return nil, fmt.Errorf("eks cleanup %s: VpcID and ClusterName are required", id)
	}
	provider, err := custom.ProviderFor(scope, custom.ProviderProps{
		ResourceType: custom.TypeEksCleanup,
		Statements: []PolicyStatement{
			Allow([]string{
				"ec2:DescribeNetworkInterfaces",
				"ec2:DeleteNetworkInterface",
				"ec2:DescribeSecurityGroups",
				"ec2:DeleteSecurityGroup",
			}),
		},
	})
	if err != nil {
		return nil, err
	}

	resource, err := custom.NewResource(scope, id, provider, custom.TypeEksCleanup, map[string]any{
		"VpcId":       props.VpcID,
		"ClusterName": props.ClusterName,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return &EksCleanup{resource: resource}, nil
}

func (c *EksCleanup) Handle() stack.Handle { return c.resource }

// Response is the handler's summary of what it removed.
func (c *EksCleanup) Response() GetAtt { return c.resource.GetAtt("Response") }
