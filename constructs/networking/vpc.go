package networking

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lex00/wetwire-aws-constructs-go/cidr"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

const (
	DefaultAzCount = 2
	MaxAzCount     = 6
)

// SubnetGroup is one subnet per availability zone of the given type.
// Mask 0 sizes the group so that all groups split the VPC evenly.
type SubnetGroup struct {
	Name string
	Type SubnetType
	Mask int
}

// ExternalVpcPeer is a VPC outside the stack to peer with.
type ExternalVpcPeer struct {
	VpcID       string
	CidrBlock   string
	PeerOwnerID string
	PeerRegion  string
	// RouteTableIDs of the peer that get a route back. When empty the routes
	// are created by the peering-routes custom resource on every route table
	// of the peer VPC.
	RouteTableIDs       []string
	EnableDnsResolution bool
}

// VpcProps configures NewVpc.
type VpcProps struct {
	// CidrBlock wins over Seed.
	CidrBlock string
	Seed      int
	AzCount   int
	// InternetAccess defaults to true.
	InternetAccess *bool
	// NatGateways defaults to one per AZ when the VPC has internet access
	// and private subnets.
	NatGateways   *int
	SubnetGroups  []SubnetGroup
	InternalPeers []*Vpc
	ExternalPeers []ExternalVpcPeer
}

// Vpc is a VPC defined in the stack.
type Vpc struct {
	scope     *stack.Scope
	vpc       stack.Handle
	cidrBlock string
	azCount   int
	subnets   map[SubnetType][]*subnet
	peerings  []stack.Handle
}

type subnet struct {
	scope      *stack.Scope
	az         int
	handle     stack.Handle
	resource   *ec2.Subnet
	routeTable stack.Handle
}

// NewVpc creates a VPC with one subnet per group and availability zone,
// the gateways and routes they need, and the configured peerings.
func NewVpc(scope *stack.Scope, id string, props VpcProps) (*Vpc, error) {
	scope = scope.Child(id)

	block := props.CidrBlock
	if block == "" {
		var err error
		if block, err = cidr.Block(props.Seed); err != nil {
			return nil, fmt.Errorf("vpc %s: %w", scope.Path(), err)
		}
	}

	azCount := props.AzCount
	if azCount == 0 {
		azCount = DefaultAzCount
	}
	if azCount < 1 || azCount > MaxAzCount {
		return nil, fmt.Errorf("vpc %s: azCount %d must be between 1 and %d", scope.Path(), azCount, MaxAzCount)
	}

	internet := props.InternetAccess == nil || *props.InternetAccess
	groups := props.SubnetGroups
	if len(groups) == 0 {
		groups = defaultSubnetGroups(internet)
	}
	if err := validateGroups(groups, internet); err != nil {
		return nil, fmt.Errorf("vpc %s: %w", scope.Path(), err)
	}

	cidrs, err := carveSubnets(block, azCount, groups)
	if err != nil {
		return nil, fmt.Errorf("vpc %s: %w", scope.Path(), err)
	}

	v := &Vpc{
		scope:     scope,
		cidrBlock: block,
		azCount:   azCount,
		subnets:   make(map[SubnetType][]*subnet),
	}

	v.vpc, err = scope.Add("Vpc", ec2.VPC{
		CidrBlock:          block,
		EnableDnsHostnames: true,
		EnableDnsSupport:   true,
		InstanceTenancy:    "default",
		Tags:               Tags(map[string]any{"Name": scope.Path()}),
	})
	if err != nil {
		return nil, err
	}

	var igw stack.Handle
	var attachment stack.Handle
	if hasType(groups, Public) {
		igw, err = scope.Add("Igw", ec2.InternetGateway{
			Tags: Tags(map[string]any{"Name": scope.Path()}),
		})
		if err != nil {
			return nil, err
		}
		attachment, err = scope.Add("VpcGw", ec2.VPCGatewayAttachment{
			VpcId:             v.vpc.Ref(),
			InternetGatewayId: igw.Ref(),
		})
		if err != nil {
			return nil, err
		}
	}

	i := 0
	for _, g := range groups {
		for az := 0; az < azCount; az++ {
			if err := v.addSubnet(g, az, cidrs[i], igw, attachment); err != nil {
				return nil, err
			}
			i++
		}
	}

	if err := v.addNatGateways(props.NatGateways, internet, attachment); err != nil {
		return nil, err
	}

	for n, peer := range props.InternalPeers {
		if err := v.peerInternal(n, peer); err != nil {
			return nil, err
		}
	}
	for n, peer := range props.ExternalPeers {
		if err := v.peerExternal(n, peer); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func defaultSubnetGroups(internet bool) []SubnetGroup {
	if !internet {
		return []SubnetGroup{{Name: "Private", Type: Private}}
	}
	return []SubnetGroup{
		{Name: "Public", Type: Public},
		{Name: "Private", Type: Private},
	}
}

func validateGroups(groups []SubnetGroup, internet bool) error {
	seen := make(map[string]bool)
	for _, g := range groups {
		if g.Name == "" {
			return errors.New("subnet group needs a name")
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate subnet group %q", g.Name)
		}
		seen[g.Name] = true
		switch g.Type {
		case Public:
			if !internet {
				return fmt.Errorf("subnet group %q is public but the VPC has no internet access", g.Name)
			}
		case Private, Isolated:
		default:
			return fmt.Errorf("subnet group %q has unknown type %q", g.Name, g.Type)
		}
	}
	return nil
}

func hasType(groups []SubnetGroup, t SubnetType) bool {
	for _, g := range groups {
		if g.Type == t {
			return true
		}
	}
	return false
}

// carveSubnets returns the CIDR of every subnet, group by group and AZ by AZ.
func carveSubnets(block string, azCount int, groups []SubnetGroup) ([]string, error) {
	var defaultMask int
	masks := make([]int, 0, azCount*len(groups))
	for _, g := range groups {
		mask := g.Mask
		if mask == 0 {
			if defaultMask == 0 {
				vpcMask, err := maskOf(block)
				if err != nil {
					return nil, err
				}
				if defaultMask, err = cidr.SubnetMask(vpcMask, azCount, len(groups)); err != nil {
					return nil, err
				}
			}
			mask = defaultMask
		}
		for az := 0; az < azCount; az++ {
			masks = append(masks, mask)
		}
	}
	return cidr.Carve(block, masks)
}

func maskOf(block string) (int, error) {
	for i := len(block) - 1; i >= 0; i-- {
		if block[i] == '/' {
			return strconv.Atoi(block[i+1:])
		}
	}
	return 0, fmt.Errorf("CIDR block %q has no mask", block)
}

func (v *Vpc) addSubnet(g SubnetGroup, az int, block string, igw, attachment stack.Handle) error {
	scope := v.scope.Child(g.Name + strconv.Itoa(az+1))

	res := &ec2.Subnet{
		VpcId:            v.vpc.Ref(),
		CidrBlock:        block,
		AvailabilityZone: AZ(az),
		Tags: Tags(map[string]any{
			"Name":                scope.Path(),
			"wetwire:subnet-name": g.Name,
			"wetwire:subnet-type": string(g.Type),
		}),
	}
	if g.Type == Public {
		res.MapPublicIpOnLaunch = true
	}

	sn, err := scope.Add("Subnet", res)
	if err != nil {
		return err
	}
	rt, err := scope.Add("RouteTable", ec2.RouteTable{
		VpcId: v.vpc.Ref(),
		Tags:  Tags(map[string]any{"Name": scope.Path()}),
	})
	if err != nil {
		return err
	}
	if _, err := scope.Add("RouteTableAssociation", ec2.SubnetRouteTableAssociation{
		SubnetId:     sn.Ref(),
		RouteTableId: rt.Ref(),
	}); err != nil {
		return err
	}

	if g.Type == Public {
		if _, err := scope.Add("DefaultRoute", ec2.Route{
			RouteTableId:         rt.Ref(),
			DestinationCidrBlock: "0.0.0.0/0",
			GatewayId:            igw.Ref(),
		}, stack.DependsOn(attachment)); err != nil {
			return err
		}
	}

	v.subnets[g.Type] = append(v.subnets[g.Type], &subnet{
		scope:      scope,
		az:         az,
		handle:     sn,
		resource:   res,
		routeTable: rt,
	})
	return nil
}

func (v *Vpc) addNatGateways(requested *int, internet bool, attachment stack.Handle) error {
	private := v.subnets[Private]
	public := v.subnets[Public]

	count := 0
	if requested != nil {
		count = *requested
	} else if internet && len(private) > 0 && len(public) > 0 {
		count = v.azCount
	}
	if count < 0 {
		return fmt.Errorf("vpc %s: natGateways must not be negative", v.scope.Path())
	}
	if count == 0 {
		return nil
	}
	if len(public) == 0 {
		return fmt.Errorf("vpc %s: NAT gateways need a public subnet group", v.scope.Path())
	}
	if count > v.azCount {
		count = v.azCount
	}

	// one gateway in each of the first count AZs, in the first public group
	nats := make([]stack.Handle, count)
	for i := 0; i < count; i++ {
		pub := public[i]
		eip, err := pub.scope.Add("Eip", ec2.EIP{
			Domain: "vpc",
			Tags:   Tags(map[string]any{"Name": pub.scope.Path()}),
		}, stack.DependsOn(attachment))
		if err != nil {
			return err
		}
		nats[i], err = pub.scope.Add("NatGateway", ec2.NatGateway{
			AllocationId: eip.GetAtt("AllocationId"),
			SubnetId:     pub.handle.Ref(),
			Tags:         Tags(map[string]any{"Name": pub.scope.Path()}),
		})
		if err != nil {
			return err
		}
	}

	for _, priv := range private {
		if _, err := priv.scope.Add("DefaultRoute", ec2.Route{
			RouteTableId:         priv.routeTable.Ref(),
			DestinationCidrBlock: "0.0.0.0/0",
			NatGatewayId:         nats[priv.az%count].Ref(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// VpcID returns a Ref to the VPC.
func (v *Vpc) VpcID() any { return v.vpc.Ref() }

// CidrBlock returns the VPC block.
func (v *Vpc) CidrBlock() any { return v.cidrBlock }

// Cidr returns the VPC block as a string.
func (v *Vpc) Cidr() string { return v.cidrBlock }

// Handle returns the AWS::EC2::VPC resource.
func (v *Vpc) Handle() stack.Handle { return v.vpc }

// AvailabilityZones returns the zones the subnets are spread over.
func (v *Vpc) AvailabilityZones() []any {
	azs := make([]any, v.azCount)
	for i := range azs {
		azs[i] = AZ(i)
	}
	return azs
}

// SubnetIDs returns Refs to the subnets of type t, one per AZ and group.
func (v *Vpc) SubnetIDs(t SubnetType) []any {
	var ids []any
	for _, s := range v.subnets[t] {
		ids = append(ids, s.handle.Ref())
	}
	return ids
}

// RouteTableIDs returns Refs to the route tables of subnets of type t.
func (v *Vpc) RouteTableIDs(t SubnetType) []any {
	var ids []any
	for _, s := range v.subnets[t] {
		ids = append(ids, s.routeTable.Ref())
	}
	return ids
}

func (v *Vpc) allRouteTables() []stack.Handle {
	var all []stack.Handle
	for _, t := range []SubnetType{Public, Private, Isolated} {
		for _, s := range v.subnets[t] {
			all = append(all, s.routeTable)
		}
	}
	return all
}

// TagSubnets adds a tag to the subnets of type t. The subnets are owned by
// the stack, so the tag is set on the resources directly.
func (v *Vpc) TagSubnets(_ *stack.Scope, t SubnetType, key, value string) error {
	for _, s := range v.subnets[t] {
		s.resource.Tags = append(s.resource.Tags, Tag{Key: key, Value: value})
	}
	return nil
}

// PeeringConnections returns the peering connections created by the VPC.
func (v *Vpc) PeeringConnections() []stack.Handle {
	return v.peerings
}
