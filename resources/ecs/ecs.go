// Package ecs provides typed AWS::ECS resources.
package ecs

// Cluster represents AWS::ECS::Cluster.
type Cluster struct {
	ClusterName     any                       `json:"ClusterName,omitempty"`
	ClusterSettings []Cluster_ClusterSettings `json:"ClusterSettings,omitempty"`
	Tags            []any                     `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Cluster) ResourceType() string { return "AWS::ECS::Cluster" }

// Cluster_ClusterSettings is a name/value cluster setting such as containerInsights.
type Cluster_ClusterSettings struct {
	Name  any `json:"Name,omitempty"`
	Value any `json:"Value,omitempty"`
}

// CapacityProvider represents AWS::ECS::CapacityProvider.
type CapacityProvider struct {
	Name                     any                                        `json:"Name,omitempty"`
	AutoScalingGroupProvider *CapacityProvider_AutoScalingGroupProvider `json:"AutoScalingGroupProvider,omitempty"`
	Tags                     []any                                      `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r CapacityProvider) ResourceType() string { return "AWS::ECS::CapacityProvider" }

// CapacityProvider_AutoScalingGroupProvider links a capacity provider to an Auto Scaling group.
type CapacityProvider_AutoScalingGroupProvider struct {
	AutoScalingGroupArn          any                              `json:"AutoScalingGroupArn,omitempty"`
	ManagedScaling               *CapacityProvider_ManagedScaling `json:"ManagedScaling,omitempty"`
	ManagedTerminationProtection any                              `json:"ManagedTerminationProtection,omitempty"`
}

// CapacityProvider_ManagedScaling configures managed scaling of the group.
type CapacityProvider_ManagedScaling struct {
	Status         any `json:"Status,omitempty"`
	TargetCapacity any `json:"TargetCapacity,omitempty"`
}

// ClusterCapacityProviderAssociations represents AWS::ECS::ClusterCapacityProviderAssociations.
type ClusterCapacityProviderAssociations struct {
	Cluster                         any                                                            `json:"Cluster,omitempty"`
	CapacityProviders               []any                                                          `json:"CapacityProviders,omitempty"`
	DefaultCapacityProviderStrategy []ClusterCapacityProviderAssociations_CapacityProviderStrategy `json:"DefaultCapacityProviderStrategy,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r ClusterCapacityProviderAssociations) ResourceType() string { return "AWS::ECS::ClusterCapacityProviderAssociations" }

// ClusterCapacityProviderAssociations_CapacityProviderStrategy weights a capacity provider.
type ClusterCapacityProviderAssociations_CapacityProviderStrategy struct {
	CapacityProvider any `json:"CapacityProvider,omitempty"`
	Base             any `json:"Base,omitempty"`
	Weight           any `json:"Weight,omitempty"`
}

// TaskDefinition represents AWS::ECS::TaskDefinition.
type TaskDefinition struct {
	Family                  any                                  `json:"Family,omitempty"`
	Cpu                     any                                  `json:"Cpu,omitempty"`
	Memory                  any                                  `json:"Memory,omitempty"`
	NetworkMode             any                                  `json:"NetworkMode,omitempty"`
	RequiresCompatibilities []any                                `json:"RequiresCompatibilities,omitempty"`
	TaskRoleArn             any                                  `json:"TaskRoleArn,omitempty"`
	ExecutionRoleArn        any                                  `json:"ExecutionRoleArn,omitempty"`
	ContainerDefinitions    []TaskDefinition_ContainerDefinition `json:"ContainerDefinitions,omitempty"`
	Tags                    []any                                `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r TaskDefinition) ResourceType() string { return "AWS::ECS::TaskDefinition" }

// TaskDefinition_ContainerDefinition describes a single container.
type TaskDefinition_ContainerDefinition struct {
	Name              any                              `json:"Name,omitempty"`
	Image             any                              `json:"Image,omitempty"`
	Cpu               any                              `json:"Cpu,omitempty"`
	Memory            any                              `json:"Memory,omitempty"`
	MemoryReservation any                              `json:"MemoryReservation,omitempty"`
	Essential         any                              `json:"Essential,omitempty"`
	Privileged        any                              `json:"Privileged,omitempty"`
	Command           []any                            `json:"Command,omitempty"`
	Environment       []TaskDefinition_KeyValuePair    `json:"Environment,omitempty"`
	PortMappings      []TaskDefinition_PortMapping     `json:"PortMappings,omitempty"`
	LogConfiguration  *TaskDefinition_LogConfiguration `json:"LogConfiguration,omitempty"`
}

// TaskDefinition_KeyValuePair is a container environment variable.
type TaskDefinition_KeyValuePair struct {
	Name  any `json:"Name,omitempty"`
	Value any `json:"Value,omitempty"`
}

// TaskDefinition_PortMapping maps a container port to the host.
type TaskDefinition_PortMapping struct {
	ContainerPort any `json:"ContainerPort,omitempty"`
	HostPort      any `json:"HostPort,omitempty"`
	Protocol      any `json:"Protocol,omitempty"`
}

// TaskDefinition_LogConfiguration selects the container log driver.
type TaskDefinition_LogConfiguration struct {
	LogDriver any            `json:"LogDriver,omitempty"`
	Options   map[string]any `json:"Options,omitempty"`
}

// Service represents AWS::ECS::Service.
type Service struct {
	ServiceName                   any                                    `json:"ServiceName,omitempty"`
	Cluster                       any                                    `json:"Cluster,omitempty"`
	TaskDefinition                any                                    `json:"TaskDefinition,omitempty"`
	DesiredCount                  any                                    `json:"DesiredCount,omitempty"`
	LaunchType                    any                                    `json:"LaunchType,omitempty"`
	EnableExecuteCommand          any                                    `json:"EnableExecuteCommand,omitempty"`
	HealthCheckGracePeriodSeconds any                                    `json:"HealthCheckGracePeriodSeconds,omitempty"`
	NetworkConfiguration          *Service_NetworkConfiguration          `json:"NetworkConfiguration,omitempty"`
	LoadBalancers                 []Service_LoadBalancer                 `json:"LoadBalancers,omitempty"`
	CapacityProviderStrategy      []Service_CapacityProviderStrategyItem `json:"CapacityProviderStrategy,omitempty"`
	Tags                          []any                                  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Service) ResourceType() string { return "AWS::ECS::Service" }

// Service_NetworkConfiguration holds the awsvpc configuration.
type Service_NetworkConfiguration struct {
	AwsvpcConfiguration *Service_AwsVpcConfiguration `json:"AwsvpcConfiguration,omitempty"`
}

// Service_AwsVpcConfiguration places tasks in subnets and security groups.
type Service_AwsVpcConfiguration struct {
	AssignPublicIp any   `json:"AssignPublicIp,omitempty"`
	SecurityGroups []any `json:"SecurityGroups,omitempty"`
	Subnets        []any `json:"Subnets,omitempty"`
}

// Service_LoadBalancer registers a container port with a target group.
type Service_LoadBalancer struct {
	ContainerName  any `json:"ContainerName,omitempty"`
	ContainerPort  any `json:"ContainerPort,omitempty"`
	TargetGroupArn any `json:"TargetGroupArn,omitempty"`
}

// Service_CapacityProviderStrategyItem weights a capacity provider for the service.
type Service_CapacityProviderStrategyItem struct {
	CapacityProvider any `json:"CapacityProvider,omitempty"`
	Base             any `json:"Base,omitempty"`
	Weight           any `json:"Weight,omitempty"`
}
