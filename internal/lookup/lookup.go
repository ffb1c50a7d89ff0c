// Package lookup reads existing infrastructure at synth time: SSM parameters
// and the shape of an existing VPC. Results are cached in a YAML context
// file so repeated synths are reproducible and work offline.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"go.uber.org/zap"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
)

// ErrNotFound is returned when the looked up parameter or VPC does not exist.
var ErrNotFound = errors.New("not found")

// SubnetTypeTag is set on every subnet the Vpc construct creates.
const SubnetTypeTag = "wetwire:subnet-type"

// Vpc describes an existing VPC.
type Vpc struct {
	VpcID                 string   `yaml:"vpcId"`
	CidrBlock             string   `yaml:"cidrBlock"`
	AvailabilityZones     []string `yaml:"availabilityZones"`
	PublicSubnetIDs       []string `yaml:"publicSubnetIds,omitempty"`
	PrivateSubnetIDs      []string `yaml:"privateSubnetIds,omitempty"`
	IsolatedSubnetIDs     []string `yaml:"isolatedSubnetIds,omitempty"`
	PublicRouteTableIDs   []string `yaml:"publicRouteTableIds,omitempty"`
	PrivateRouteTableIDs  []string `yaml:"privateRouteTableIds,omitempty"`
	IsolatedRouteTableIDs []string `yaml:"isolatedRouteTableIds,omitempty"`
}

// Attributes converts v for networking.ImportVpc.
func (v Vpc) Attributes() networking.VpcAttributes {
	return networking.VpcAttributes{
		VpcID:                 v.VpcID,
		CidrBlock:             v.CidrBlock,
		AvailabilityZones:     v.AvailabilityZones,
		PublicSubnetIDs:       v.PublicSubnetIDs,
		PrivateSubnetIDs:      v.PrivateSubnetIDs,
		IsolatedSubnetIDs:     v.IsolatedSubnetIDs,
		PublicRouteTableIDs:   v.PublicRouteTableIDs,
		PrivateRouteTableIDs:  v.PrivateRouteTableIDs,
		IsolatedRouteTableIDs: v.IsolatedRouteTableIDs,
	}
}

// Import wraps the VPC as a networking.Network.
func (v Vpc) Import() (*networking.ImportedVpc, error) {
	return networking.ImportVpc(v.Attributes())
}

// Client performs lookups, reading through the cache.
type Client struct {
	ssm    ssmiface.SSMAPI
	ec2    ec2iface.EC2API
	cache  *Cache
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache reads and records lookups in cache.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client from service clients.
func New(ssmClient ssmiface.SSMAPI, ec2Client ec2iface.EC2API, opts ...Option) *Client {
	c := &Client{
		ssm:    ssmClient,
		ec2:    ec2Client,
		cache:  NewCache(""),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSession creates an AWS session honoring the shared config files, the
// way the AWS CLI does.
func NewSession(region, profile string) (*session.Session, error) {
	opts := session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Profile:           profile,
	}
	if region != "" {
		opts.Config.Region = aws.String(region)
	}
	return session.NewSessionWithOptions(opts)
}

// NewFromSession creates a Client with SSM and EC2 clients from sess.
func NewFromSession(sess *session.Session, opts ...Option) *Client {
	return New(ssm.New(sess), ec2.New(sess), opts...)
}

// Parameter returns the value of an SSM parameter.
func (c *Client) Parameter(ctx context.Context, name string) (string, error) {
	if v, ok := c.cache.Parameter(name); ok {
		return v, nil
	}

	out, err := c.ssm.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name: aws.String(name),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == ssm.ErrCodeParameterNotFound {
			return "", fmt.Errorf("parameter %s: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("reading parameter %s: %w", name, err)
	}
	value := aws.StringValue(out.Parameter.Value)
	c.cache.SetParameter(name, value)
	c.logger.Debug("looked up parameter", zap.String("name", name))
	return value, nil
}

// VpcFromParameter resolves the VPC whose ID is stored in an SSM parameter.
func (c *Client) VpcFromParameter(ctx context.Context, name string) (Vpc, error) {
	id, err := c.Parameter(ctx, name)
	if err != nil {
		return Vpc{}, err
	}
	return c.Vpc(ctx, id)
}

// Vpc describes the VPC with id and sorts its subnets by type. Subnets
// created by the Vpc construct carry SubnetTypeTag; other subnets are typed
// by their default route: an internet gateway makes them public, a NAT
// gateway private, and no default route isolated.
func (c *Client) Vpc(ctx context.Context, id string) (Vpc, error) {
	if v, ok := c.cache.Vpc(id); ok {
		return v, nil
	}

	vpcs, err := c.ec2.DescribeVpcsWithContext(ctx, &ec2.DescribeVpcsInput{
		VpcIds: aws.StringSlice([]string{id}),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == "InvalidVpcID.NotFound" {
			return Vpc{}, fmt.Errorf("vpc %s: %w", id, ErrNotFound)
		}
		return Vpc{}, fmt.Errorf("describing vpc %s: %w", id, err)
	}
	if len(vpcs.Vpcs) == 0 {
		return Vpc{}, fmt.Errorf("vpc %s: %w", id, ErrNotFound)
	}

	filter := []*ec2.Filter{{Name: aws.String("vpc-id"), Values: aws.StringSlice([]string{id})}}

	subnets, err := c.ec2.DescribeSubnetsWithContext(ctx, &ec2.DescribeSubnetsInput{Filters: filter})
	if err != nil {
		return Vpc{}, fmt.Errorf("describing subnets of %s: %w", id, err)
	}
	tables, err := c.ec2.DescribeRouteTablesWithContext(ctx, &ec2.DescribeRouteTablesInput{Filters: filter})
	if err != nil {
		return Vpc{}, fmt.Errorf("describing route tables of %s: %w", id, err)
	}

	v := Vpc{
		VpcID:     id,
		CidrBlock: aws.StringValue(vpcs.Vpcs[0].CidrBlock),
	}
	assigned := subnetRouteTables(tables.RouteTables)

	// deterministic order: by AZ, then CIDR
	sort.Slice(subnets.Subnets, func(i, j int) bool {
		a, b := subnets.Subnets[i], subnets.Subnets[j]
		if aws.StringValue(a.AvailabilityZone) != aws.StringValue(b.AvailabilityZone) {
			return aws.StringValue(a.AvailabilityZone) < aws.StringValue(b.AvailabilityZone)
		}
		return aws.StringValue(a.CidrBlock) < aws.StringValue(b.CidrBlock)
	})

	azs := make(map[string]bool)
	for _, s := range subnets.Subnets {
		subnetID := aws.StringValue(s.SubnetId)
		table := assigned[subnetID]
		if table == nil {
			table = assigned[""]
		}
		tableID := ""
		if table != nil {
			tableID = aws.StringValue(table.RouteTableId)
		}

		switch subnetType(s, table) {
		case networking.Public:
			v.PublicSubnetIDs = append(v.PublicSubnetIDs, subnetID)
			v.PublicRouteTableIDs = append(v.PublicRouteTableIDs, tableID)
		case networking.Private:
			v.PrivateSubnetIDs = append(v.PrivateSubnetIDs, subnetID)
			v.PrivateRouteTableIDs = append(v.PrivateRouteTableIDs, tableID)
		default:
			v.IsolatedSubnetIDs = append(v.IsolatedSubnetIDs, subnetID)
			v.IsolatedRouteTableIDs = append(v.IsolatedRouteTableIDs, tableID)
		}

		az := aws.StringValue(s.AvailabilityZone)
		if !azs[az] {
			azs[az] = true
			v.AvailabilityZones = append(v.AvailabilityZones, az)
		}
	}

	c.cache.SetVpc(v)
	c.logger.Debug("looked up vpc",
		zap.String("vpc", id),
		zap.Int("public", len(v.PublicSubnetIDs)),
		zap.Int("private", len(v.PrivateSubnetIDs)),
		zap.Int("isolated", len(v.IsolatedSubnetIDs)))
	return v, nil
}

// subnetRouteTables maps subnet IDs to their route table. The main route
// table is stored under the empty key.
func subnetRouteTables(tables []*ec2.RouteTable) map[string]*ec2.RouteTable {
	m := make(map[string]*ec2.RouteTable)
	for _, t := range tables {
		for _, a := range t.Associations {
			if aws.BoolValue(a.Main) {
				m[""] = t
				continue
			}
			if a.SubnetId != nil {
				m[aws.StringValue(a.SubnetId)] = t
			}
		}
	}
	return m
}

func subnetType(s *ec2.Subnet, table *ec2.RouteTable) networking.SubnetType {
	for _, tag := range s.Tags {
		if aws.StringValue(tag.Key) != SubnetTypeTag {
			continue
		}
		switch t := networking.SubnetType(aws.StringValue(tag.Value)); t {
		case networking.Public, networking.Private, networking.Isolated:
			return t
		}
	}
	if table == nil {
		return networking.Isolated
	}
	for _, r := range table.Routes {
		if aws.StringValue(r.DestinationCidrBlock) != networking.AnyIPv4 {
			continue
		}
		if strings.HasPrefix(aws.StringValue(r.GatewayId), "igw-") {
			return networking.Public
		}
		if r.NatGatewayId != nil || r.InstanceId != nil {
			return networking.Private
		}
	}
	return networking.Isolated
}
