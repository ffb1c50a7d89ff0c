package networking

import (
	"fmt"

	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// Rule is an ingress rule. Set either Peer (an IPv4 CIDR) or
// PeerSecurityGroupID.
type Rule struct {
	Name                string
	Peer                string
	PeerSecurityGroupID any
	Port                int
	// ToPort defaults to Port.
	ToPort int
	// Protocol defaults to tcp.
	Protocol string
}

// AnyIPv4 matches every IPv4 address.
const AnyIPv4 = "0.0.0.0/0"

// SecurityGroupsProps configures NewSecurityGroups.
type SecurityGroupsProps struct {
	Network     Network
	Name        string
	Description string
	Rules       []Rule
	// AllowAllOutbound defaults to true.
	AllowAllOutbound *bool
}

// SecurityGroups is a security group with ingress rules.
type SecurityGroups struct {
	group stack.Handle
}

// NewSecurityGroups creates a security group in the network.
func NewSecurityGroups(scope *stack.Scope, id string, props SecurityGroupsProps) (*SecurityGroups, error) {
	if props.Network == nil {
		return nil, fmt.Errorf("security group %s: Network is required", id)
	}
	scope = scope.Child(id)

	ingress := make([]ec2.SecurityGroup_Ingress, 0, len(props.Rules))
	for _, r := range props.Rules {
		rule, err := r.ingress()
		if err != nil {
			return nil, fmt.Errorf("security group %s: %w", scope.Path(), err)
		}
		ingress = append(ingress, rule)
	}

	egress := []ec2.SecurityGroup_Egress{{
		IpProtocol:  "-1",
		CidrIp:      AnyIPv4,
		Description: "Allow all outbound traffic by default",
	}}
	if props.AllowAllOutbound != nil && !*props.AllowAllOutbound {
		// a rule matching nothing replaces the implicit allow-all
		egress = []ec2.SecurityGroup_Egress{{
			IpProtocol:  "icmp",
			FromPort:    252,
			ToPort:      86,
			CidrIp:      "255.255.255.255/32",
			Description: "Disallow all traffic",
		}}
	}

	description := props.Description
	if description == "" {
		description = scope.Path()
	}

	group, err := scope.Add("SecurityGroup", ec2.SecurityGroup{
		GroupName:            optional(props.Name),
		GroupDescription:     description,
		VpcId:                props.Network.VpcID(),
		SecurityGroupIngress: ingress,
		SecurityGroupEgress:  egress,
	})
	if err != nil {
		return nil, err
	}
	return &SecurityGroups{group: group}, nil
}

func (r Rule) ingress() (ec2.SecurityGroup_Ingress, error) {
	if r.Port <= 0 || r.Port > 65535 {
		return ec2.SecurityGroup_Ingress{}, fmt.Errorf("rule %q: invalid port %d", r.Name, r.Port)
	}
	if (r.Peer == "") == (r.PeerSecurityGroupID == nil) {
		return ec2.SecurityGroup_Ingress{}, fmt.Errorf("rule %q: set exactly one of Peer and PeerSecurityGroupID", r.Name)
	}
	to := r.ToPort
	if to == 0 {
		to = r.Port
	}
	protocol := r.Protocol
	if protocol == "" {
		protocol = "tcp"
	}
	rule := ec2.SecurityGroup_Ingress{
		IpProtocol:  protocol,
		FromPort:    r.Port,
		ToPort:      to,
		Description: optional(r.Name),
	}
	if r.Peer != "" {
		rule.CidrIp = r.Peer
	} else {
		rule.SourceSecurityGroupId = r.PeerSecurityGroupID
	}
	return rule, nil
}

// Handle returns the AWS::EC2::SecurityGroup resource.
func (g *SecurityGroups) Handle() stack.Handle { return g.group }

// GroupID returns the security group ID.
func (g *SecurityGroups) GroupID() GetAtt { return g.group.GetAtt("GroupId") }
