// Package ec2 provides typed AWS::EC2 resources.
package ec2

// VPC represents AWS::EC2::VPC.
type VPC struct {
	CidrBlock          any   `json:"CidrBlock,omitempty"`
	EnableDnsHostnames any   `json:"EnableDnsHostnames,omitempty"`
	EnableDnsSupport   any   `json:"EnableDnsSupport,omitempty"`
	InstanceTenancy    any   `json:"InstanceTenancy,omitempty"`
	Tags               []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r VPC) ResourceType() string { return "AWS::EC2::VPC" }

// Subnet represents AWS::EC2::Subnet.
type Subnet struct {
	VpcId               any   `json:"VpcId,omitempty"`
	CidrBlock           any   `json:"CidrBlock,omitempty"`
	AvailabilityZone    any   `json:"AvailabilityZone,omitempty"`
	MapPublicIpOnLaunch any   `json:"MapPublicIpOnLaunch,omitempty"`
	Tags                []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Subnet) ResourceType() string { return "AWS::EC2::Subnet" }

// InternetGateway represents AWS::EC2::InternetGateway.
type InternetGateway struct {
	Tags []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r InternetGateway) ResourceType() string { return "AWS::EC2::InternetGateway" }

// VPCGatewayAttachment represents AWS::EC2::VPCGatewayAttachment.
type VPCGatewayAttachment struct {
	VpcId             any `json:"VpcId,omitempty"`
	InternetGatewayId any `json:"InternetGatewayId,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r VPCGatewayAttachment) ResourceType() string { return "AWS::EC2::VPCGatewayAttachment" }

// EIP represents AWS::EC2::EIP.
type EIP struct {
	Domain any   `json:"Domain,omitempty"`
	Tags   []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r EIP) ResourceType() string { return "AWS::EC2::EIP" }

// NatGateway represents AWS::EC2::NatGateway.
type NatGateway struct {
	AllocationId any   `json:"AllocationId,omitempty"`
	SubnetId     any   `json:"SubnetId,omitempty"`
	Tags         []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r NatGateway) ResourceType() string { return "AWS::EC2::NatGateway" }

// RouteTable represents AWS::EC2::RouteTable.
type RouteTable struct {
	VpcId any   `json:"VpcId,omitempty"`
	Tags  []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r RouteTable) ResourceType() string { return "AWS::EC2::RouteTable" }

// Route represents AWS::EC2::Route.
type Route struct {
	RouteTableId           any `json:"RouteTableId,omitempty"`
	DestinationCidrBlock   any `json:"DestinationCidrBlock,omitempty"`
	GatewayId              any `json:"GatewayId,omitempty"`
	NatGatewayId           any `json:"NatGatewayId,omitempty"`
	VpcPeeringConnectionId any `json:"VpcPeeringConnectionId,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Route) ResourceType() string { return "AWS::EC2::Route" }

// SubnetRouteTableAssociation represents AWS::EC2::SubnetRouteTableAssociation.
type SubnetRouteTableAssociation struct {
	SubnetId     any `json:"SubnetId,omitempty"`
	RouteTableId any `json:"RouteTableId,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SubnetRouteTableAssociation) ResourceType() string {
	return "AWS::EC2::SubnetRouteTableAssociation"
}

// SecurityGroup represents AWS::EC2::SecurityGroup.
type SecurityGroup struct {
	GroupName            any                     `json:"GroupName,omitempty"`
	GroupDescription     any                     `json:"GroupDescription,omitempty"`
	VpcId                any                     `json:"VpcId,omitempty"`
	SecurityGroupIngress []SecurityGroup_Ingress `json:"SecurityGroupIngress,omitempty"`
	SecurityGroupEgress  []SecurityGroup_Egress  `json:"SecurityGroupEgress,omitempty"`
	Tags                 []any                   `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SecurityGroup) ResourceType() string { return "AWS::EC2::SecurityGroup" }

// SecurityGroup_Ingress is an inline ingress rule.
type SecurityGroup_Ingress struct {
	IpProtocol            any `json:"IpProtocol,omitempty"`
	FromPort              any `json:"FromPort,omitempty"`
	ToPort                any `json:"ToPort,omitempty"`
	CidrIp                any `json:"CidrIp,omitempty"`
	SourceSecurityGroupId any `json:"SourceSecurityGroupId,omitempty"`
	Description           any `json:"Description,omitempty"`
}

// SecurityGroup_Egress is an inline egress rule.
type SecurityGroup_Egress struct {
	IpProtocol                 any `json:"IpProtocol,omitempty"`
	FromPort                   any `json:"FromPort,omitempty"`
	ToPort                     any `json:"ToPort,omitempty"`
	CidrIp                     any `json:"CidrIp,omitempty"`
	DestinationSecurityGroupId any `json:"DestinationSecurityGroupId,omitempty"`
	Description                any `json:"Description,omitempty"`
}

// SecurityGroupIngress represents AWS::EC2::SecurityGroupIngress.
type SecurityGroupIngress struct {
	GroupId               any `json:"GroupId,omitempty"`
	IpProtocol            any `json:"IpProtocol,omitempty"`
	FromPort              any `json:"FromPort,omitempty"`
	ToPort                any `json:"ToPort,omitempty"`
	CidrIp                any `json:"CidrIp,omitempty"`
	SourceSecurityGroupId any `json:"SourceSecurityGroupId,omitempty"`
	Description           any `json:"Description,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SecurityGroupIngress) ResourceType() string { return "AWS::EC2::SecurityGroupIngress" }

// VPCPeeringConnection represents AWS::EC2::VPCPeeringConnection.
type VPCPeeringConnection struct {
	VpcId       any   `json:"VpcId,omitempty"`
	PeerVpcId   any   `json:"PeerVpcId,omitempty"`
	PeerOwnerId any   `json:"PeerOwnerId,omitempty"`
	PeerRegion  any   `json:"PeerRegion,omitempty"`
	PeerRoleArn any   `json:"PeerRoleArn,omitempty"`
	Tags        []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r VPCPeeringConnection) ResourceType() string { return "AWS::EC2::VPCPeeringConnection" }

// LaunchTemplate represents AWS::EC2::LaunchTemplate.
type LaunchTemplate struct {
	LaunchTemplateName any                                `json:"LaunchTemplateName,omitempty"`
	LaunchTemplateData *LaunchTemplate_LaunchTemplateData `json:"LaunchTemplateData,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r LaunchTemplate) ResourceType() string { return "AWS::EC2::LaunchTemplate" }

// LaunchTemplate_LaunchTemplateData holds the instance configuration.
type LaunchTemplate_LaunchTemplateData struct {
	ImageId            any                                `json:"ImageId,omitempty"`
	InstanceType       any                                `json:"InstanceType,omitempty"`
	IamInstanceProfile *LaunchTemplate_IamInstanceProfile `json:"IamInstanceProfile,omitempty"`
	SecurityGroupIds   []any                              `json:"SecurityGroupIds,omitempty"`
	UserData           any                                `json:"UserData,omitempty"`
	MetadataOptions    *LaunchTemplate_MetadataOptions    `json:"MetadataOptions,omitempty"`
}

// LaunchTemplate_IamInstanceProfile names the instance profile by ARN.
type LaunchTemplate_IamInstanceProfile struct {
	Arn any `json:"Arn,omitempty"`
}

// LaunchTemplate_MetadataOptions configures the instance metadata service.
type LaunchTemplate_MetadataOptions struct {
	HttpTokens              any `json:"HttpTokens,omitempty"`
	HttpPutResponseHopLimit any `json:"HttpPutResponseHopLimit,omitempty"`
}
