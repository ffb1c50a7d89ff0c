package networking

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/cidr"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/custom"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

func synth(t *testing.T, s *stack.Stack) *wetwire.Template {
	t.Helper()
	tmpl, _, err := s.Synth()
	require.NoError(t, err)
	return tmpl
}

func ofType(tmpl *wetwire.Template, resourceType string) []string {
	var ids []string
	for id, r := range tmpl.Resources {
		if r.Type == resourceType {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func ref(id string) map[string]any { return map[string]any{"Ref": id} }

func tagValue(t *testing.T, props map[string]any, key string) any {
	t.Helper()
	for _, tag := range props["Tags"].([]any) {
		m := tag.(map[string]any)
		if m["Key"] == key {
			return m["Value"]
		}
	}
	return nil
}

func TestNewVpc_Defaults(t *testing.T) {
	s := stack.New("network")
	vpc, err := NewVpc(s.Root(), "main", VpcProps{Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, "10.1.0.0/16", vpc.Cidr())
	assert.Equal(t, Ref{LogicalName: "MainVpc"}, vpc.VpcID())
	assert.Len(t, vpc.SubnetIDs(Public), 2)
	assert.Len(t, vpc.SubnetIDs(Private), 2)
	assert.Empty(t, vpc.SubnetIDs(Isolated))
	assert.Len(t, vpc.AvailabilityZones(), 2)

	tmpl := synth(t, s)
	assert.Len(t, tmpl.Resources, 23)
	assert.Len(t, ofType(tmpl, "AWS::EC2::Subnet"), 4)
	assert.Len(t, ofType(tmpl, "AWS::EC2::NatGateway"), 2)
	assert.Len(t, ofType(tmpl, "AWS::EC2::InternetGateway"), 1)

	v := tmpl.Resources["MainVpc"].Properties
	assert.Equal(t, "10.1.0.0/16", v["CidrBlock"])
	assert.Equal(t, true, v["EnableDnsHostnames"])

	cidrs := map[string]string{
		"MainPublic1Subnet":  "10.1.0.0/18",
		"MainPublic2Subnet":  "10.1.64.0/18",
		"MainPrivate1Subnet": "10.1.128.0/18",
		"MainPrivate2Subnet": "10.1.192.0/18",
	}
	for id, block := range cidrs {
		assert.Equal(t, block, tmpl.Resources[id].Properties["CidrBlock"], id)
	}

	pub := tmpl.Resources["MainPublic1Subnet"].Properties
	assert.Equal(t, true, pub["MapPublicIpOnLaunch"])
	assert.Equal(t, "Public", tagValue(t, pub, "wetwire:subnet-type"))
	assert.Contains(t, pub["AvailabilityZone"], "Fn::Select")

	route := tmpl.Resources["MainPublic1DefaultRoute"]
	assert.Equal(t, ref("MainIgw"), route.Properties["GatewayId"])
	assert.Equal(t, []string{"MainVpcGw"}, route.DependsOn)

	privateRoute := tmpl.Resources["MainPrivate2DefaultRoute"].Properties
	assert.Equal(t, ref("MainPublic2NatGateway"), privateRoute["NatGatewayId"])
}

func TestNewVpc_NoInternetAccess(t *testing.T) {
	s := stack.New("network")
	vpc, err := NewVpc(s.Root(), "internal", VpcProps{CidrBlock: "10.20.0.0/16", InternetAccess: BoolPtr(false)})
	require.NoError(t, err)

	assert.Empty(t, vpc.SubnetIDs(Public))
	assert.Len(t, vpc.SubnetIDs(Private), 2)

	tmpl := synth(t, s)
	assert.Empty(t, ofType(tmpl, "AWS::EC2::InternetGateway"))
	assert.Empty(t, ofType(tmpl, "AWS::EC2::NatGateway"))
	assert.Empty(t, ofType(tmpl, "AWS::EC2::Route"))
	assert.Equal(t, "10.20.0.0/17", tmpl.Resources["InternalPrivate1Subnet"].Properties["CidrBlock"])
}

func TestNewVpc_SingleNatGateway(t *testing.T) {
	s := stack.New("network")
	_, err := NewVpc(s.Root(), "main", VpcProps{Seed: 2, AzCount: 3, NatGateways: IntPtr(1)})
	require.NoError(t, err)

	tmpl := synth(t, s)
	assert.Equal(t, []string{"MainPublic1NatGateway"}, ofType(tmpl, "AWS::EC2::NatGateway"))
	for _, id := range []string{"MainPrivate1DefaultRoute", "MainPrivate2DefaultRoute", "MainPrivate3DefaultRoute"} {
		assert.Equal(t, ref("MainPublic1NatGateway"), tmpl.Resources[id].Properties["NatGatewayId"], id)
	}
}

func TestNewVpc_SubnetGroups(t *testing.T) {
	s := stack.New("network")
	vpc, err := NewVpc(s.Root(), "main", VpcProps{
		Seed: 3,
		SubnetGroups: []SubnetGroup{
			{Name: "Web", Type: Public, Mask: 24},
			{Name: "Data", Type: Isolated, Mask: 26},
		},
	})
	require.NoError(t, err)
	assert.Len(t, vpc.SubnetIDs(Isolated), 2)

	tmpl := synth(t, s)
	assert.Equal(t, "10.3.0.0/24", tmpl.Resources["MainWeb1Subnet"].Properties["CidrBlock"])
	assert.Equal(t, "10.3.1.0/24", tmpl.Resources["MainWeb2Subnet"].Properties["CidrBlock"])
	assert.Equal(t, "10.3.2.0/26", tmpl.Resources["MainData1Subnet"].Properties["CidrBlock"])
	assert.Equal(t, "10.3.2.64/26", tmpl.Resources["MainData2Subnet"].Properties["CidrBlock"])
	assert.Empty(t, ofType(tmpl, "AWS::EC2::NatGateway"))
}

func TestNewVpc_Errors(t *testing.T) {
	tests := []struct {
		name  string
		props VpcProps
	}{
		{"too many azs", VpcProps{AzCount: 7}},
		{"bad seed", VpcProps{Seed: 256}},
		{"public without internet", VpcProps{
			InternetAccess: BoolPtr(false),
			SubnetGroups:   []SubnetGroup{{Name: "Web", Type: Public}},
		}},
		{"duplicate group", VpcProps{SubnetGroups: []SubnetGroup{
			{Name: "A", Type: Private}, {Name: "A", Type: Isolated},
		}}},
		{"nat without public", VpcProps{
			NatGateways:  IntPtr(1),
			SubnetGroups: []SubnetGroup{{Name: "A", Type: Private}},
		}},
		{"external peer without id", VpcProps{ExternalPeers: []ExternalVpcPeer{{CidrBlock: "10.9.0.0/16"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVpc(stack.New("network").Root(), "main", tt.props)
			assert.Error(t, err)
		})
	}
}

func TestNewVpc_SameCidrPeerRejected(t *testing.T) {
	_, err := NewVpc(stack.New("network").Root(), "main", VpcProps{
		Seed:          1,
		ExternalPeers: []ExternalVpcPeer{{VpcID: "vpc-0abc", CidrBlock: "10.1.0.0/16"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cidr.ErrSameCidrBlock))
	assert.Contains(t, err.Error(), "cannot peer VPCs with the same CIDR block 10.1.0.0/16")

	s := stack.New("network")
	a, err := NewVpc(s.Root(), "a", VpcProps{Seed: 5})
	require.NoError(t, err)
	_, err = NewVpc(s.Root(), "b", VpcProps{Seed: 5, InternalPeers: []*Vpc{a}})
	assert.True(t, errors.Is(err, cidr.ErrSameCidrBlock))
}

func TestNewVpc_InternalPeer(t *testing.T) {
	s := stack.New("network")
	a, err := NewVpc(s.Root(), "a", VpcProps{Seed: 1, InternetAccess: BoolPtr(false), AzCount: 1})
	require.NoError(t, err)
	b, err := NewVpc(s.Root(), "b", VpcProps{Seed: 2, InternetAccess: BoolPtr(false), AzCount: 1, InternalPeers: []*Vpc{a}})
	require.NoError(t, err)

	require.Len(t, b.PeeringConnections(), 1)
	conn := b.PeeringConnections()[0]
	assert.Equal(t, "BInternalPeer1Connection", conn.LogicalID)

	tmpl := synth(t, s)
	props := tmpl.Resources[conn.LogicalID].Properties
	assert.Equal(t, ref("BVpc"), props["VpcId"])
	assert.Equal(t, ref("AVpc"), props["PeerVpcId"])

	routes := ofType(tmpl, "AWS::EC2::Route")
	require.Len(t, routes, 2)
	dests := map[any]any{}
	for _, id := range routes {
		p := tmpl.Resources[id].Properties
		dests[p["DestinationCidrBlock"]] = p["RouteTableId"]
		assert.Equal(t, ref(conn.LogicalID), p["VpcPeeringConnectionId"])
	}
	assert.Equal(t, ref("BPrivate1RouteTable"), dests["10.1.0.0/16"])
	assert.Equal(t, ref("APrivate1RouteTable"), dests["10.2.0.0/16"])
}

func TestNewVpc_ExternalPeer(t *testing.T) {
	s := stack.New("network")
	_, err := NewVpc(s.Root(), "main", VpcProps{
		Seed:           1,
		AzCount:        1,
		InternetAccess: BoolPtr(false),
		ExternalPeers: []ExternalVpcPeer{
			{VpcID: "vpc-0abc", CidrBlock: "10.0.10.0/24", EnableDnsResolution: true},
			{VpcID: "vpc-0def", CidrBlock: "172.16.0.0/16", PeerOwnerID: "210987654321", RouteTableIDs: []string{"rtb-1"}},
		},
	})
	require.NoError(t, err)

	tmpl := synth(t, s)

	routes := tmpl.Resources["MainExternalPeer1PeerRoutes"]
	assert.Equal(t, custom.TypeVpcPeeringRoutes, routes.Type)
	assert.Equal(t, "vpc-0abc", routes.Properties["VpcId"])
	assert.Equal(t, "10.1.0.0/16", routes.Properties["DestinationCidrBlock"])
	assert.Equal(t, ref("MainExternalPeer1Connection"), routes.Properties["PeeringConnectionId"])

	dns := tmpl.Resources["MainExternalPeer1DnsResolution"]
	assert.Equal(t, custom.TypeVpcPeerDnsResolution, dns.Type)
	assert.Equal(t, "true", dns.Properties["IsRequester"])
	assert.Equal(t, "false", dns.Properties["IsAccepter"])

	conn2 := tmpl.Resources["MainExternalPeer2Connection"].Properties
	assert.Equal(t, "210987654321", conn2["PeerOwnerId"])
	assert.NotContains(t, conn2, "PeerRegion")

	peerRoute := tmpl.Resources["MainExternalPeer2PeerRoute1"].Properties
	assert.Equal(t, "rtb-1", peerRoute["RouteTableId"])
	assert.Equal(t, "10.1.0.0/16", peerRoute["DestinationCidrBlock"])

	assert.Contains(t, tmpl.Resources, "VpcPeeringRoutesProviderFunction")
	assert.Contains(t, tmpl.Resources, "VpcPeerDnsResolutionProviderFunction")
}

func TestVpc_TagSubnets(t *testing.T) {
	s := stack.New("eks")
	vpc, err := NewVpc(s.Root(), "main", VpcProps{Seed: 1})
	require.NoError(t, err)

	require.NoError(t, vpc.TagSubnets(s.Root(), Private, "kubernetes.io/role/internal-elb", "1"))

	tmpl := synth(t, s)
	assert.Equal(t, "1", tagValue(t, tmpl.Resources["MainPrivate1Subnet"].Properties, "kubernetes.io/role/internal-elb"))
	assert.Nil(t, tagValue(t, tmpl.Resources["MainPublic1Subnet"].Properties, "kubernetes.io/role/internal-elb"))
	assert.Empty(t, ofType(tmpl, custom.TypeSubnetTagging))
}

func TestImportVpc(t *testing.T) {
	_, err := ImportVpc(VpcAttributes{})
	require.Error(t, err)

	vpc, err := ImportVpc(VpcAttributes{
		VpcID:             "vpc-0abc",
		CidrBlock:         "10.5.0.0/16",
		AvailabilityZones: []string{"us-west-2a", "us-west-2b"},
		PrivateSubnetIDs:  []string{"subnet-1", "subnet-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "vpc-0abc", vpc.VpcID())
	assert.Equal(t, []any{"subnet-1", "subnet-2"}, vpc.SubnetIDs(Private))
	assert.Nil(t, vpc.SubnetIDs(Public))
	assert.Equal(t, []any{"us-west-2a", "us-west-2b"}, vpc.AvailabilityZones())

	s := stack.New("eks")
	require.NoError(t, vpc.TagSubnets(s.Root(), Private, "kubernetes.io/role/internal-elb", "1"))
	require.NoError(t, vpc.TagSubnets(s.Root(), Public, "kubernetes.io/role/elb", "1"))

	tmpl := synth(t, s)
	ids := ofType(tmpl, custom.TypeSubnetTagging)
	require.Len(t, ids, 1)
	tagging := tmpl.Resources[ids[0]].Properties
	assert.Equal(t, []any{"subnet-1", "subnet-2"}, tagging["SubnetIds"])
	assert.Equal(t,
		[]any{map[string]any{"Key": "kubernetes.io/role/internal-elb", "Value": "1"}},
		tagging["Tags"])
}

func TestNewSubnetTagging_Validation(t *testing.T) {
	s := stack.New("x")
	_, err := NewSubnetTagging(s.Root(), "t", SubnetTaggingProps{Tags: map[string]string{"a": "b"}})
	assert.Error(t, err)
	_, err = NewSubnetTagging(s.Root(), "t", SubnetTaggingProps{SubnetIDs: []any{"subnet-1"}})
	assert.Error(t, err)
}

func TestNewSecurityGroups(t *testing.T) {
	s := stack.New("app")
	vpc, err := NewVpc(s.Root(), "main", VpcProps{Seed: 1, AzCount: 1})
	require.NoError(t, err)

	sg, err := NewSecurityGroups(s.Root(), "common", SecurityGroupsProps{
		Network: vpc,
		Name:    "common",
		Rules: []Rule{
			{Name: "SSH", Peer: AnyIPv4, Port: 22},
			{Name: "Postgres", Peer: AnyIPv4, Port: 5432},
			{Name: "FromAlb", PeerSecurityGroupID: "sg-0alb", Port: 3000, ToPort: 3001},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, GetAtt{LogicalName: "CommonSecurityGroup", Attribute: "GroupId"}, sg.GroupID())

	tmpl := synth(t, s)
	props := tmpl.Resources["CommonSecurityGroup"].Properties
	assert.Equal(t, "common", props["GroupName"])
	assert.Equal(t, ref("MainVpc"), props["VpcId"])

	ingress := props["SecurityGroupIngress"].([]any)
	require.Len(t, ingress, 3)
	ssh := ingress[0].(map[string]any)
	assert.Equal(t, "tcp", ssh["IpProtocol"])
	assert.EqualValues(t, 22, ssh["FromPort"])
	assert.EqualValues(t, 22, ssh["ToPort"])
	assert.Equal(t, "0.0.0.0/0", ssh["CidrIp"])
	fromAlb := ingress[2].(map[string]any)
	assert.Equal(t, "sg-0alb", fromAlb["SourceSecurityGroupId"])
	assert.EqualValues(t, 3001, fromAlb["ToPort"])

	egress := props["SecurityGroupEgress"].([]any)
	assert.Equal(t, "-1", egress[0].(map[string]any)["IpProtocol"])
}

func TestNewSecurityGroups_Errors(t *testing.T) {
	s := stack.New("app")
	vpc, err := ImportVpc(VpcAttributes{VpcID: "vpc-1"})
	require.NoError(t, err)

	_, err = NewSecurityGroups(s.Root(), "a", SecurityGroupsProps{})
	assert.Error(t, err)
	_, err = NewSecurityGroups(s.Root(), "b", SecurityGroupsProps{Network: vpc, Rules: []Rule{{Port: 0, Peer: AnyIPv4}}})
	assert.Error(t, err)
	_, err = NewSecurityGroups(s.Root(), "c", SecurityGroupsProps{Network: vpc, Rules: []Rule{{Port: 80}}})
	assert.Error(t, err)

	closed, err := NewSecurityGroups(s.Root(), "d", SecurityGroupsProps{Network: vpc, AllowAllOutbound: BoolPtr(false)})
	require.NoError(t, err)
	tmpl := synth(t, s)
	egress := tmpl.Resources[closed.Handle().LogicalID].Properties["SecurityGroupEgress"].([]any)
	assert.Equal(t, "255.255.255.255/32", egress[0].(map[string]any)["CidrIp"])
}

func TestNewIngressAlb(t *testing.T) {
	s := stack.New("eks-stack")
	vpc, err := NewVpc(s.Root(), "main", VpcProps{Seed: 1})
	require.NoError(t, err)

	alb, err := NewIngressAlb(s.Root(), "ingress", IngressAlbProps{
		Network:        vpc,
		InternetAccess: true,
		ClusterName:    "demo",
	})
	require.NoError(t, err)
	assert.Equal(t, GetAtt{LogicalName: "IngressLoadBalancer", Attribute: "DNSName"}, alb.DnsName())

	tmpl := synth(t, s)
	lb := tmpl.Resources["IngressLoadBalancer"].Properties
	assert.Equal(t, "internet-facing", lb["Scheme"])
	assert.Equal(t, []any{ref("MainPublic1Subnet"), ref("MainPublic2Subnet")}, lb["Subnets"])
	assert.Equal(t, "LoadBalancer", tagValue(t, lb, TagIngressResource))
	assert.Equal(t, "demo", tagValue(t, lb, TagIngressCluster))
	assert.Equal(t, "eks-stack", tagValue(t, lb, TagIngressStack))
	assert.Contains(t, tmpl.Resources, "IngressSecurityGroup")
}

func TestNewIngressAlb_Internal(t *testing.T) {
	s := stack.New("eks-stack")
	vpc, err := ImportVpc(VpcAttributes{VpcID: "vpc-1", PrivateSubnetIDs: []string{"subnet-a"}})
	require.NoError(t, err)

	alb, err := NewIngressAlb(s.Root(), "ingress", IngressAlbProps{
		Network:         vpc,
		ClusterName:     "demo",
		StackName:       "other",
		SecurityGroupID: "sg-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "sg-1", alb.SecurityGroupID())

	tmpl := synth(t, s)
	lb := tmpl.Resources["IngressLoadBalancer"].Properties
	assert.Equal(t, "internal", lb["Scheme"])
	assert.Equal(t, "other", tagValue(t, lb, TagIngressStack))
	assert.NotContains(t, tmpl.Resources, "IngressSecurityGroup")

	_, err = NewIngressAlb(s.Root(), "public", IngressAlbProps{Network: vpc, ClusterName: "demo", InternetAccess: true})
	assert.Error(t, err)
}

func TestNewVpcPeeringRequestAccepter(t *testing.T) {
	s := stack.New("accepter", stack.WithEnv("123456789012", "us-east-1"))

	h, err := NewVpcPeeringRequestAccepter(s.Root(), "accept", VpcPeeringRequestAccepterProps{
		PeeringConnectionID: "pcx-1",
		VpcArn:              "arn:aws:ec2:us-east-1:123456789012:vpc/vpc-1",
	})
	require.NoError(t, err)
	assert.Equal(t, custom.TypeVpcPeeringAccepter, h.Type)

	tmpl := synth(t, s)
	res := tmpl.Resources[h.LogicalID]
	assert.Equal(t, "pcx-1", res.Properties["PeeringConnectionId"])
	assert.Equal(t, []string{"AcceptPolicy"}, res.DependsOn)

	policy := tmpl.Resources["AcceptPolicy"].Properties
	assert.Equal(t, []any{ref("VpcPeeringAccepterProviderRole")}, policy["Roles"])
	doc := policy["PolicyDocument"].(map[string]any)
	stmt := doc["Statement"].([]any)[0].(map[string]any)
	resources := stmt["Resource"].([]any)
	assert.Equal(t, "arn:aws:ec2:us-east-1:123456789012:vpc/vpc-1", resources[0])

	_, err = NewVpcPeeringRequestAccepter(s.Root(), "bad", VpcPeeringRequestAccepterProps{})
	assert.Error(t, err)
}

func TestNewVpcPeerDnsResolution_Validation(t *testing.T) {
	_, err := NewVpcPeerDnsResolution(stack.New("x").Root(), "dns", VpcPeerDnsResolutionProps{PeeringConnectionID: "pcx-1"})
	assert.Error(t, err)
}
