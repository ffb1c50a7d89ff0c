package compute

import (
	"errors"
	"fmt"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/eks"
	"github.com/lex00/wetwire-aws-constructs-go/resources/iam"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// DefaultKubernetesVersion is used when no version is given.
const DefaultKubernetesVersion = "1.29"

// EksClusterProps configures NewEksCluster.
type EksClusterProps struct {
	ClusterName string
	Version     string
	Network     networking.Network
	// SubnetType places the control plane interfaces. Empty uses public and
	// private subnets.
	SubnetType networking.SubnetType
	// ManagedPolicyArns defaults to AmazonEKSClusterPolicy.
	ManagedPolicyArns []any
}

// EksCluster is an EKS control plane and its service role.
type EksCluster struct {
	cluster stack.Handle
	role    stack.Handle
	name    string
}

// NewEksCluster creates the cluster role and the cluster. Nodes are added
// separately with NewEksNodegroup.
func NewEksCluster(scope *stack.Scope, id string, props EksClusterProps, opts ...stack.ResourceOption) (*EksCluster, error) {
	if props.ClusterName == "" {
		return nil, fmt.Errorf("eks cluster %s: ClusterName is required", id)
	}
	if props.Network == nil {
		return nil, fmt.Errorf("eks cluster %s: Network is required", id)
	}
	scope = scope.Child(id)

	var subnets []any
	if props.SubnetType != "" {
		subnets = props.Network.SubnetIDs(props.SubnetType)
	} else {
		subnets = append(props.Network.SubnetIDs(networking.Public), props.Network.SubnetIDs(networking.Private)...)
	}
	if len(subnets) == 0 {
		return nil, fmt.Errorf("eks cluster %s: no subnets to place the cluster in", scope.Path())
	}

	policies := props.ManagedPolicyArns
	if len(policies) == 0 {
		policies = []any{ManagedPolicyArn("AmazonEKSClusterPolicy")}
	}
	role, err := scope.Add("Role", iam.Role{
		AssumeRolePolicyDocument: AssumeRolePolicy("eks.amazonaws.com"),
		ManagedPolicyArns:        policies,
	})
	if err != nil {
		return nil, err
	}

	version := props.Version
	if version == "" {
		version = DefaultKubernetesVersion
	}
	cluster, err := scope.Add("Cluster", eks.Cluster{
		Name:    props.ClusterName,
		Version: version,
		RoleArn: role.GetAtt("Arn"),
		ResourcesVpcConfig: &eks.Cluster_ResourcesVpcConfig{
			SubnetIds:             subnets,
			EndpointPublicAccess:  true,
			EndpointPrivateAccess: true,
		},
		AccessConfig: &eks.Cluster_AccessConfig{
			AuthenticationMode:                      "API_AND_CONFIG_MAP",
			BootstrapClusterCreatorAdminPermissions: true,
		},
	}, opts...)
	if err != nil {
		return nil, err
	}

	return &EksCluster{cluster: cluster, role: role, name: props.ClusterName}, nil
}

// Name returns the cluster name as a Ref, so dependents wait for the cluster.
func (c *EksCluster) Name() Ref { return c.cluster.Ref() }

// ClusterName is the literal cluster name.
func (c *EksCluster) ClusterName() string { return c.name }

func (c *EksCluster) Arn() GetAtt             { return c.cluster.GetAtt("Arn") }
func (c *EksCluster) Endpoint() GetAtt        { return c.cluster.GetAtt("Endpoint") }
func (c *EksCluster) SecurityGroupID() GetAtt { return c.cluster.GetAtt("ClusterSecurityGroupId") }
func (c *EksCluster) Handle() stack.Handle    { return c.cluster }
func (c *EksCluster) Role() stack.Handle      { return c.role }

// EksNodegroupProps configures NewEksNodegroup.
type EksNodegroupProps struct {
	ClusterName   any
	NodegroupName string
	Subnets       []any
	InstanceTypes []string
	// AmiType defaults to AL2023_x86_64_STANDARD.
	AmiType     string
	MinSize     int
	MaxSize     int
	DesiredSize int
	DiskSize    int
	Labels      map[string]string
	Tags        map[string]string
	// ManagedPolicyArns defaults to the worker node, CNI and ECR read-only policies.
	ManagedPolicyArns []any
}

// EksNodegroup is a managed node group and its node role.
type EksNodegroup struct {
	nodegroup stack.Handle
	role      stack.Handle
}

// NewEksNodegroup creates a node role and a managed node group.
func NewEksNodegroup(scope *stack.Scope, id string, props EksNodegroupProps, opts ...stack.ResourceOption) (*EksNodegroup, error) {
	if err := props.validate(); err != nil {
		return nil, fmt.Errorf("eks nodegroup %s: %w", id, err)
	}
	scope = scope.Child(id)

	policies := props.ManagedPolicyArns
	if len(policies) == 0 {
		policies = []any{
			ManagedPolicyArn("AmazonEKSWorkerNodePolicy"),
			ManagedPolicyArn("AmazonEKS_CNI_Policy"),
			ManagedPolicyArn("AmazonEC2ContainerRegistryReadOnly"),
		}
	}
	role, err := scope.Add("Role", iam.Role{
		AssumeRolePolicyDocument: AssumeRolePolicy("ec2.amazonaws.com"),
		ManagedPolicyArns:        policies,
	})
	if err != nil {
		return nil, err
	}

	desired := props.DesiredSize
	if desired == 0 {
		desired = props.MinSize
	}
	maxSize := props.MaxSize
	if maxSize < desired {
		maxSize = desired
	}
	amiType := props.AmiType
	if amiType == "" {
		amiType = "AL2023_x86_64_STANDARD"
	}

	ng := eks.Nodegroup{
		ClusterName:   props.ClusterName,
		NodegroupName: optional(props.NodegroupName),
		NodeRole:      role.GetAtt("Arn"),
		Subnets:       props.Subnets,
		AmiType:       amiType,
		ScalingConfig: &eks.Nodegroup_ScalingConfig{
			MinSize:     props.MinSize,
			MaxSize:     maxSize,
			DesiredSize: desired,
		},
		Labels: stringMap(props.Labels),
		Tags:   stringMap(props.Tags),
	}
	for _, t := range props.InstanceTypes {
		ng.InstanceTypes = append(ng.InstanceTypes, t)
	}
	if props.DiskSize > 0 {
		ng.DiskSize = props.DiskSize
	}

	nodegroup, err := scope.Add("Nodegroup", ng, opts...)
	if err != nil {
		return nil, err
	}
	return &EksNodegroup{nodegroup: nodegroup, role: role}, nil
}

func (p EksNodegroupProps) validate() error {
	var errs []error
	if p.ClusterName == nil {
		errs = append(errs, errors.New("ClusterName is required"))
	}
	if len(p.Subnets) == 0 {
		errs = append(errs, errors.New("no subnets"))
	}
	if p.MinSize < 0 {
		errs = append(errs, fmt.Errorf("negative minimum size %d", p.MinSize))
	}
	if p.MaxSize > 0 && p.MaxSize < p.MinSize {
		errs = append(errs, fmt.Errorf("maximum size %d is below minimum size %d", p.MaxSize, p.MinSize))
	}
	if p.DesiredSize > 0 && p.DesiredSize < p.MinSize {
		errs = append(errs, fmt.Errorf("desired size %d is below minimum size %d", p.DesiredSize, p.MinSize))
	}
	return errors.Join(errs...)
}

func (n *EksNodegroup) Handle() stack.Handle { return n.nodegroup }
func (n *EksNodegroup) Role() stack.Handle   { return n.role }

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringMap(m map[string]string) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
