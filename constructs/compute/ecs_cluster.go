package compute

import (
	"fmt"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/autoscaling"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ecs"
	"github.com/lex00/wetwire-aws-constructs-go/resources/iam"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// EcsOptimizedImage resolves the current ECS-optimized Amazon Linux 2023 AMI.
const EcsOptimizedImage = "{{resolve:ssm:/aws/service/ecs/optimized-ami/amazon-linux-2023/recommended/image_id}}"

// Ec2Capacity adds EC2 instances to an ECS cluster.
type Ec2Capacity struct {
	InstanceType    string
	DesiredCapacity int
	// MachineImage defaults to EcsOptimizedImage.
	MachineImage any
	// SubnetType defaults to private subnets, falling back to public ones.
	SubnetType networking.SubnetType
}

// EcsClusterProps configures NewEcsCluster.
type EcsClusterProps struct {
	ClusterName string
	Network     networking.Network
	Capacity    *Ec2Capacity
}

// EcsCluster is an ECS cluster, optionally backed by an Auto Scaling group.
type EcsCluster struct {
	cluster          stack.Handle
	network          networking.Network
	capacityProvider stack.Handle
	instanceGroup    any
}

// NewEcsCluster creates the cluster and, when Capacity is set, its EC2
// capacity provider.
func NewEcsCluster(scope *stack.Scope, id string, props EcsClusterProps) (*EcsCluster, error) {
	if props.Network == nil {
		return nil, fmt.Errorf("ecs cluster %s: Network is required", id)
	}
	scope = scope.Child(id)

	cluster, err := scope.Add("Cluster", ecs.Cluster{
		ClusterName: optional(props.ClusterName),
		ClusterSettings: []ecs.Cluster_ClusterSettings{
			{Name: "containerInsights", Value: "enabled"},
		},
	})
	if err != nil {
		return nil, err
	}

	c := &EcsCluster{cluster: cluster, network: props.Network}
	if props.Capacity != nil {
		if err := c.addCapacity(scope.Child("Capacity"), *props.Capacity); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *EcsCluster) addCapacity(scope *stack.Scope, capacity Ec2Capacity) error {
	if capacity.InstanceType == "" {
		return fmt.Errorf("ecs capacity %s: InstanceType is required", scope.Path())
	}
	desired := capacity.DesiredCapacity
	if desired == 0 {
		desired = 1
	}
	image := capacity.MachineImage
	if image == nil {
		image = EcsOptimizedImage
	}

	subnetType := capacity.SubnetType
	if subnetType == "" {
		subnetType = networking.Private
		if len(c.network.SubnetIDs(subnetType)) == 0 {
			subnetType = networking.Public
		}
	}
	subnets := c.network.SubnetIDs(subnetType)
	if len(subnets) == 0 {
		return fmt.Errorf("ecs capacity %s: network has no %s subnets", scope.Path(), subnetType)
	}

	role, err := scope.Add("InstanceRole", iam.Role{
		AssumeRolePolicyDocument: AssumeRolePolicy("ec2.amazonaws.com"),
		ManagedPolicyArns: []any{
			ManagedPolicyArn("service-role/AmazonEC2ContainerServiceforEC2Role"),
			ManagedPolicyArn("AmazonSSMManagedInstanceCore"),
		},
	})
	if err != nil {
		return err
	}
	profile, err := scope.Add("InstanceProfile", iam.InstanceProfile{
		Roles: []any{role.Ref()},
	})
	if err != nil {
		return err
	}

	sg, err := networking.NewSecurityGroups(scope, "Instances", networking.SecurityGroupsProps{
		Network:     c.network,
		Description: "ECS container instances of " + scope.Path(),
	})
	if err != nil {
		return err
	}
	c.instanceGroup = sg.GroupID()

	template, err := scope.Add("LaunchTemplate", ec2.LaunchTemplate{
		LaunchTemplateData: &ec2.LaunchTemplate_LaunchTemplateData{
			ImageId:            image,
			InstanceType:       capacity.InstanceType,
			IamInstanceProfile: &ec2.LaunchTemplate_IamInstanceProfile{Arn: profile.GetAtt("Arn")},
			SecurityGroupIds:   []any{sg.GroupID()},
			UserData: Base64{Value: SubWithMap{
				String:    "#!/bin/bash\necho ECS_CLUSTER=${Cluster} >> /etc/ecs/ecs.config\n",
				Variables: map[string]any{"Cluster": c.cluster.Ref()},
			}},
			MetadataOptions: &ec2.LaunchTemplate_MetadataOptions{
				HttpTokens:              "required",
				HttpPutResponseHopLimit: 2,
			},
		},
	})
	if err != nil {
		return err
	}

	group, err := scope.Add("Group", autoscaling.AutoScalingGroup{
		MinSize:           0,
		MaxSize:           desired,
		DesiredCapacity:   desired,
		VPCZoneIdentifier: subnets,
		LaunchTemplate: &autoscaling.AutoScalingGroup_LaunchTemplateSpecification{
			LaunchTemplateId: template.Ref(),
			Version:          template.GetAtt("LatestVersionNumber"),
		},
		Tags: []autoscaling.AutoScalingGroup_TagProperty{
			{Key: "Name", Value: scope.Path(), PropagateAtLaunch: true},
		},
	})
	if err != nil {
		return err
	}

	c.capacityProvider, err = scope.Add("Provider", ecs.CapacityProvider{
		AutoScalingGroupProvider: &ecs.CapacityProvider_AutoScalingGroupProvider{
			AutoScalingGroupArn: group.Ref(),
			ManagedScaling: &ecs.CapacityProvider_ManagedScaling{
				Status:         "ENABLED",
				TargetCapacity: 100,
			},
			ManagedTerminationProtection: "DISABLED",
		},
	})
	if err != nil {
		return err
	}

	_, err = scope.Add("Association", ecs.ClusterCapacityProviderAssociations{
		Cluster:           c.cluster.Ref(),
		CapacityProviders: []any{c.capacityProvider.Ref(), "FARGATE", "FARGATE_SPOT"},
		DefaultCapacityProviderStrategy: []ecs.ClusterCapacityProviderAssociations_CapacityProviderStrategy{
			{CapacityProvider: c.capacityProvider.Ref(), Weight: 1},
		},
	})
	return err
}

// Name returns the cluster name.
func (c *EcsCluster) Name() Ref { return c.cluster.Ref() }

func (c *EcsCluster) Arn() GetAtt                    { return c.cluster.GetAtt("Arn") }
func (c *EcsCluster) Handle() stack.Handle           { return c.cluster }
func (c *EcsCluster) Network() networking.Network    { return c.network }
func (c *EcsCluster) CapacityProvider() stack.Handle { return c.capacityProvider }

// InstanceSecurityGroupID is the security group of the EC2 capacity, or nil.
func (c *EcsCluster) InstanceSecurityGroupID() any { return c.instanceGroup }
