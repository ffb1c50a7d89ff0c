package networking

import (
	"fmt"

	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
	elbv2 "github.com/lex00/wetwire-aws-constructs-go/resources/elasticloadbalancingv2"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// Tags the AWS Load Balancer Controller uses to adopt a load balancer.
const (
	TagIngressResource = "ingress.k8s.aws/resource"
	TagIngressCluster  = "ingress.k8s.aws/cluster"
	TagIngressStack    = "ingress.k8s.aws/stack"
)

// IngressAlbProps configures NewIngressAlb.
type IngressAlbProps struct {
	Network Network
	Name    string
	// InternetAccess makes the load balancer internet-facing.
	InternetAccess  bool
	SecurityGroupID any
	// SubnetType defaults to Public for internet-facing load balancers and
	// Private otherwise.
	SubnetType  SubnetType
	ClusterName string
	StackName   string
}

// IngressAlb is an application load balancer tagged for adoption by the
// Kubernetes ingress controller of a cluster.
type IngressAlb struct {
	lb            stack.Handle
	securityGroup any
}

// NewIngressAlb creates the load balancer.
func NewIngressAlb(scope *stack.Scope, id string, props IngressAlbProps) (*IngressAlb, error) {
	if props.Network == nil {
		return nil, fmt.Errorf("ingress alb %s: Network is required", id)
	}
	if props.ClusterName == "" {
		return nil, fmt.Errorf("ingress alb %s: ClusterName is required", id)
	}
	scope = scope.Child(id)

	stackName := props.StackName
	if stackName == "" {
		stackName = scope.Stack().Name()
	}

	subnetType := props.SubnetType
	if subnetType == "" {
		subnetType = Private
		if props.InternetAccess {
			subnetType = Public
		}
	}
	subnets := props.Network.SubnetIDs(subnetType)
	if len(subnets) == 0 {
		return nil, fmt.Errorf("ingress alb %s: network has no %s subnets", scope.Path(), subnetType)
	}

	tags := Tags(map[string]any{
		TagIngressResource: "LoadBalancer",
		TagIngressCluster:  props.ClusterName,
		TagIngressStack:    stackName,
	})

	sg := props.SecurityGroupID
	if sg == nil {
		h, err := scope.Add("SecurityGroup", ec2.SecurityGroup{
			GroupDescription: "Automatically created Security Group for ELB " + scope.Path(),
			VpcId:            props.Network.VpcID(),
			SecurityGroupEgress: []ec2.SecurityGroup_Egress{{
				IpProtocol: "-1",
				CidrIp:     AnyIPv4,
			}},
			Tags: tags,
		})
		if err != nil {
			return nil, err
		}
		sg = h.GetAtt("GroupId")
	}

	scheme := "internal"
	if props.InternetAccess {
		scheme = "internet-facing"
	}

	lb, err := scope.Add("LoadBalancer", elbv2.LoadBalancer{
		Name:           optional(props.Name),
		Type:           "application",
		Scheme:         scheme,
		IpAddressType:  "ipv4",
		Subnets:        subnets,
		SecurityGroups: []any{sg},
		Tags:           tags,
	})
	if err != nil {
		return nil, err
	}
	return &IngressAlb{lb: lb, securityGroup: sg}, nil
}

// LoadBalancerArn returns the load balancer ARN.
func (a *IngressAlb) LoadBalancerArn() Ref { return a.lb.Ref() }

// DnsName returns the load balancer DNS name.
func (a *IngressAlb) DnsName() GetAtt { return a.lb.GetAtt("DNSName") }

// SecurityGroupID returns the security group attached to the load balancer.
func (a *IngressAlb) SecurityGroupID() any { return a.securityGroup }
