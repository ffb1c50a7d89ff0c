// Package networking provides the VPC and the constructs that attach to it:
// security groups, subnet tagging, VPC peering and the ingress load balancer.
package networking

import (
	"fmt"

	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// SubnetType classifies subnets by how they reach the internet.
type SubnetType string

const (
	// Public subnets route to an internet gateway.
	Public SubnetType = "Public"
	// Private subnets route out through a NAT gateway when one exists.
	Private SubnetType = "Private"
	// Isolated subnets have no route out of the VPC.
	Isolated SubnetType = "Isolated"
)

// Network is what constructs need to know about a VPC, whether it is
// defined in the same stack or imported.
type Network interface {
	VpcID() any
	CidrBlock() any
	AvailabilityZones() []any
	SubnetIDs(t SubnetType) []any
	RouteTableIDs(t SubnetType) []any
	// TagSubnets tags every subnet of type t.
	TagSubnets(scope *stack.Scope, t SubnetType, key, value string) error
}

// VpcAttributes identifies an existing VPC.
type VpcAttributes struct {
	VpcID                 any
	CidrBlock             any
	AvailabilityZones     []string
	PublicSubnetIDs       []string
	PrivateSubnetIDs      []string
	IsolatedSubnetIDs     []string
	PublicRouteTableIDs   []string
	PrivateRouteTableIDs  []string
	IsolatedRouteTableIDs []string
}

// ImportedVpc is a VPC created outside the stack.
type ImportedVpc struct {
	attrs VpcAttributes
}

// ImportVpc wraps an existing VPC. No resources are created.
func ImportVpc(attrs VpcAttributes) (*ImportedVpc, error) {
	if attrs.VpcID == nil || attrs.VpcID == "" {
		return nil, fmt.Errorf("importing VPC: VpcID is required")
	}
	return &ImportedVpc{attrs: attrs}, nil
}

func (v *ImportedVpc) VpcID() any     { return v.attrs.VpcID }
func (v *ImportedVpc) CidrBlock() any { return v.attrs.CidrBlock }

func (v *ImportedVpc) AvailabilityZones() []any {
	return toAny(v.attrs.AvailabilityZones)
}

func (v *ImportedVpc) SubnetIDs(t SubnetType) []any {
	switch t {
	case Public:
		return toAny(v.attrs.PublicSubnetIDs)
	case Private:
		return toAny(v.attrs.PrivateSubnetIDs)
	case Isolated:
		return toAny(v.attrs.IsolatedSubnetIDs)
	}
	return nil
}

func (v *ImportedVpc) RouteTableIDs(t SubnetType) []any {
	switch t {
	case Public:
		return toAny(v.attrs.PublicRouteTableIDs)
	case Private:
		return toAny(v.attrs.PrivateRouteTableIDs)
	case Isolated:
		return toAny(v.attrs.IsolatedRouteTableIDs)
	}
	return nil
}

// TagSubnets tags the imported subnets through the subnet-tagging custom
// resource, since CloudFormation cannot tag resources it does not own.
func (v *ImportedVpc) TagSubnets(scope *stack.Scope, t SubnetType, key, value string) error {
	ids := v.SubnetIDs(t)
	if len(ids) == 0 {
		return nil
	}
	_, err := NewSubnetTagging(scope, string(t)+" subnets "+key, SubnetTaggingProps{
		SubnetIDs: ids,
		Tags:      map[string]string{key: value},
	})
	return err
}

func toAny(ss []string) []any {
	if len(ss) == 0 {
		return nil
	}
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
