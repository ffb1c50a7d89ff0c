// Package eks provides typed AWS::EKS resources.
package eks

// Cluster represents AWS::EKS::Cluster.
type Cluster struct {
	Name               any                         `json:"Name,omitempty"`
	Version            any                         `json:"Version,omitempty"`
	RoleArn            any                         `json:"RoleArn,omitempty"`
	ResourcesVpcConfig *Cluster_ResourcesVpcConfig `json:"ResourcesVpcConfig,omitempty"`
	AccessConfig       *Cluster_AccessConfig       `json:"AccessConfig,omitempty"`
	Tags               []any                       `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Cluster) ResourceType() string { return "AWS::EKS::Cluster" }

// Cluster_ResourcesVpcConfig places the control plane network interfaces.
type Cluster_ResourcesVpcConfig struct {
	SubnetIds             []any `json:"SubnetIds,omitempty"`
	SecurityGroupIds      []any `json:"SecurityGroupIds,omitempty"`
	EndpointPublicAccess  any   `json:"EndpointPublicAccess,omitempty"`
	EndpointPrivateAccess any   `json:"EndpointPrivateAccess,omitempty"`
}

// Cluster_AccessConfig selects the cluster authentication mode.
type Cluster_AccessConfig struct {
	AuthenticationMode                      any `json:"AuthenticationMode,omitempty"`
	BootstrapClusterCreatorAdminPermissions any `json:"BootstrapClusterCreatorAdminPermissions,omitempty"`
}

// Nodegroup represents AWS::EKS::Nodegroup.
type Nodegroup struct {
	ClusterName   any                      `json:"ClusterName,omitempty"`
	NodegroupName any                      `json:"NodegroupName,omitempty"`
	NodeRole      any                      `json:"NodeRole,omitempty"`
	Subnets       []any                    `json:"Subnets,omitempty"`
	ScalingConfig *Nodegroup_ScalingConfig `json:"ScalingConfig,omitempty"`
	InstanceTypes []any                    `json:"InstanceTypes,omitempty"`
	AmiType       any                      `json:"AmiType,omitempty"`
	CapacityType  any                      `json:"CapacityType,omitempty"`
	DiskSize      any                      `json:"DiskSize,omitempty"`
	Labels        map[string]any           `json:"Labels,omitempty"`
	Tags          map[string]any           `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Nodegroup) ResourceType() string { return "AWS::EKS::Nodegroup" }

// Nodegroup_ScalingConfig bounds the node group size.
type Nodegroup_ScalingConfig struct {
	MinSize     any `json:"MinSize,omitempty"`
	MaxSize     any `json:"MaxSize,omitempty"`
	DesiredSize any `json:"DesiredSize,omitempty"`
}

// Addon represents AWS::EKS::Addon.
type Addon struct {
	ClusterName      any   `json:"ClusterName,omitempty"`
	AddonName        any   `json:"AddonName,omitempty"`
	AddonVersion     any   `json:"AddonVersion,omitempty"`
	ResolveConflicts any   `json:"ResolveConflicts,omitempty"`
	Tags             []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Addon) ResourceType() string { return "AWS::EKS::Addon" }

// PodIdentityAssociation represents AWS::EKS::PodIdentityAssociation.
type PodIdentityAssociation struct {
	ClusterName    any   `json:"ClusterName,omitempty"`
	Namespace      any   `json:"Namespace,omitempty"`
	ServiceAccount any   `json:"ServiceAccount,omitempty"`
	RoleArn        any   `json:"RoleArn,omitempty"`
	Tags           []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r PodIdentityAssociation) ResourceType() string { return "AWS::EKS::PodIdentityAssociation" }
