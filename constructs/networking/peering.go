package networking

import (
	"fmt"
	"strconv"

	"github.com/lex00/wetwire-aws-constructs-go/cidr"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/custom"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
	"github.com/lex00/wetwire-aws-constructs-go/resources/iam"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// peerInternal peers v with another VPC of the same stack and routes both
// ways between every route table.
func (v *Vpc) peerInternal(n int, peer *Vpc) error {
	if peer == nil {
		return fmt.Errorf("vpc %s: internal peer %d is nil", v.scope.Path(), n)
	}
	if err := cidr.CheckPeerable(v.cidrBlock, peer.cidrBlock); err != nil {
		return fmt.Errorf("vpc %s: %w", v.scope.Path(), err)
	}

	scope := v.scope.Child("InternalPeer" + strconv.Itoa(n+1))
	conn, err := scope.Add("Connection", ec2.VPCPeeringConnection{
		VpcId:     v.VpcID(),
		PeerVpcId: peer.VpcID(),
		Tags:      Tags(map[string]any{"Name": scope.Path()}),
	})
	if err != nil {
		return err
	}
	v.peerings = append(v.peerings, conn)

	for i, rt := range v.allRouteTables() {
		if _, err := scope.Add("Route"+strconv.Itoa(i+1), ec2.Route{
			RouteTableId:           rt.Ref(),
			DestinationCidrBlock:   peer.cidrBlock,
			VpcPeeringConnectionId: conn.Ref(),
		}); err != nil {
			return err
		}
	}
	for i, rt := range peer.allRouteTables() {
		if _, err := scope.Add("PeerRoute"+strconv.Itoa(i+1), ec2.Route{
			RouteTableId:           rt.Ref(),
			DestinationCidrBlock:   v.cidrBlock,
			VpcPeeringConnectionId: conn.Ref(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// peerExternal requests a peering with a VPC outside the stack. The local
// side gets routes directly; the peer side gets them on the listed route
// tables, or through the peering-routes custom resource.
func (v *Vpc) peerExternal(n int, peer ExternalVpcPeer) error {
	if peer.VpcID == "" {
		return fmt.Errorf("vpc %s: external peer %d has no VPC ID", v.scope.Path(), n)
	}
	if err := cidr.CheckPeerable(v.cidrBlock, peer.CidrBlock); err != nil {
		return fmt.Errorf("vpc %s: %w", v.scope.Path(), err)
	}

	scope := v.scope.Child("ExternalPeer" + strconv.Itoa(n+1))
	conn, err := scope.Add("Connection", ec2.VPCPeeringConnection{
		VpcId:       v.VpcID(),
		PeerVpcId:   peer.VpcID,
		PeerOwnerId: optional(peer.PeerOwnerID),
		PeerRegion:  optional(peer.PeerRegion),
		Tags:        Tags(map[string]any{"Name": scope.Path()}),
	})
	if err != nil {
		return err
	}
	v.peerings = append(v.peerings, conn)

	for i, rt := range v.allRouteTables() {
		if _, err := scope.Add("Route"+strconv.Itoa(i+1), ec2.Route{
			RouteTableId:           rt.Ref(),
			DestinationCidrBlock:   peer.CidrBlock,
			VpcPeeringConnectionId: conn.Ref(),
		}); err != nil {
			return err
		}
	}

	if len(peer.RouteTableIDs) > 0 {
		for i, rtID := range peer.RouteTableIDs {
			if _, err := scope.Add("PeerRoute"+strconv.Itoa(i+1), ec2.Route{
				RouteTableId:           rtID,
				DestinationCidrBlock:   v.cidrBlock,
				VpcPeeringConnectionId: conn.Ref(),
			}); err != nil {
				return err
			}
		}
	} else {
		if _, err := NewVpcPeeringRoutes(scope, "PeerRoutes", VpcPeeringRoutesProps{
			VpcID:                peer.VpcID,
			PeeringConnectionID:  conn.Ref(),
			DestinationCidrBlock: v.cidrBlock,
		}); err != nil {
			return err
		}
	}

	if peer.EnableDnsResolution {
		if _, err := NewVpcPeerDnsResolution(scope, "DnsResolution", VpcPeerDnsResolutionProps{
			PeeringConnectionID: conn.Ref(),
			IsRequester:         true,
		}); err != nil {
			return err
		}
	}
	return nil
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// VpcPeeringRoutesProps configures NewVpcPeeringRoutes.
type VpcPeeringRoutesProps struct {
	VpcID                any
	PeeringConnectionID  any
	DestinationCidrBlock any
}

// VpcPeeringRoutes adds a route through a peering connection to every route
// table of a VPC the stack does not own.
type VpcPeeringRoutes struct {
	resource stack.Handle
}

// NewVpcPeeringRoutes creates a Custom::VpcPeeringRoutes resource.
func NewVpcPeeringRoutes(scope *stack.Scope, id string, props VpcPeeringRoutesProps) (*VpcPeeringRoutes, error) {
	if props.VpcID == nil || props.PeeringConnectionID == nil || props.DestinationCidrBlock == nil {
		return nil, fmt.Errorf("peering routes %s: VpcID, PeeringConnectionID and DestinationCidrBlock are required", id)
	}

	provider, err := custom.ProviderFor(scope, custom.ProviderProps{
		ResourceType: custom.TypeVpcPeeringRoutes,
		Statements: []PolicyStatement{
			Allow([]string{"ec2:DescribeRouteTables"}),
			Allow([]string{"ec2:CreateRoute", "ec2:DeleteRoute"}, Arn("ec2", "route-table/*")),
		},
	})
	if err != nil {
		return nil, err
	}

	h, err := custom.NewResource(scope, id, provider, custom.TypeVpcPeeringRoutes, map[string]any{
		"VpcId":                props.VpcID,
		"PeeringConnectionId":  props.PeeringConnectionID,
		"DestinationCidrBlock": props.DestinationCidrBlock,
	})
	if err != nil {
		return nil, err
	}
	return &VpcPeeringRoutes{resource: h}, nil
}

// Handle returns the custom resource.
func (r *VpcPeeringRoutes) Handle() stack.Handle { return r.resource }

// Response is the list of route tables the handler updated.
func (r *VpcPeeringRoutes) Response() GetAtt { return r.resource.GetAtt("Response") }

// VpcPeerDnsResolutionProps configures NewVpcPeerDnsResolution.
type VpcPeerDnsResolutionProps struct {
	PeeringConnectionID any
	IsRequester         bool
	IsAccepter          bool
}

// NewVpcPeerDnsResolution lets each side of a peering resolve the other's
// private DNS names. The setting is removed when the resource is deleted.
func NewVpcPeerDnsResolution(scope *stack.Scope, id string, props VpcPeerDnsResolutionProps) (stack.Handle, error) {
	if props.PeeringConnectionID == nil {
		return stack.Handle{}, fmt.Errorf("peer dns resolution %s: PeeringConnectionID is required", id)
	}
	if !props.IsRequester && !props.IsAccepter {
		return stack.Handle{}, fmt.Errorf("peer dns resolution %s: set IsRequester, IsAccepter or both", id)
	}

	provider, err := custom.ProviderFor(scope, custom.ProviderProps{
		ResourceType: custom.TypeVpcPeerDnsResolution,
		Statements: []PolicyStatement{
			Allow([]string{"ec2:ModifyVpcPeeringConnectionOptions"}),
		},
	})
	if err != nil {
		return stack.Handle{}, err
	}

	return custom.NewResource(scope, id, provider, custom.TypeVpcPeerDnsResolution, map[string]any{
		"PeeringConnectionId": props.PeeringConnectionID,
		"IsRequester":         strconv.FormatBool(props.IsRequester),
		"IsAccepter":          strconv.FormatBool(props.IsAccepter),
	})
}

// VpcPeeringRequestAccepterProps configures NewVpcPeeringRequestAccepter.
type VpcPeeringRequestAccepterProps struct {
	PeeringConnectionID any
	VpcArn              any
	AccountID           any
	Region              any
}

// NewVpcPeeringRequestAccepter accepts a peering request on the accepter
// side. Each accepter grants the shared handler role permission on its own
// VPC only.
func NewVpcPeeringRequestAccepter(scope *stack.Scope, id string, props VpcPeeringRequestAccepterProps) (stack.Handle, error) {
	if props.PeeringConnectionID == nil || props.VpcArn == nil {
		return stack.Handle{}, fmt.Errorf("peering accepter %s: PeeringConnectionID and VpcArn are required", id)
	}
	s := scope.Stack()
	account := props.AccountID
	if account == nil {
		account = s.Account()
	}
	region := props.Region
	if region == nil {
		region = s.Region()
	}

	provider, err := custom.ProviderFor(scope, custom.ProviderProps{
		ResourceType: custom.TypeVpcPeeringAccepter,
	})
	if err != nil {
		return stack.Handle{}, err
	}

	scope = scope.Child(id)
	policy, err := scope.Add("Policy", iam.Policy{
		PolicyName: scope.ID("Policy"),
		PolicyDocument: NewPolicyDocument(Allow(
			[]string{"ec2:AcceptVpcPeeringConnection"},
			props.VpcArn,
			SubWithMap{
				String: "arn:${AWS::Partition}:ec2:${Region}:${Account}:vpc-peering-connection/*",
				Variables: map[string]any{
					"Region":  region,
					"Account": account,
				},
			},
		)),
		Roles: []any{provider.Role.Ref()},
	})
	if err != nil {
		return stack.Handle{}, err
	}

	return custom.NewResource(scope, "Resource", provider, custom.TypeVpcPeeringAccepter, map[string]any{
		"PeeringConnectionId": props.PeeringConnectionID,
	}, stack.DependsOn(policy))
}
