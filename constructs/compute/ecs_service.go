package compute

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/alb"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ecs"
	"github.com/lex00/wetwire-aws-constructs-go/resources/iam"
	"github.com/lex00/wetwire-aws-constructs-go/resources/logs"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

const logRetentionDays = 90

// EcsServiceProps configures NewEcsService.
type EcsServiceProps struct {
	Cluster         *EcsCluster
	ContainerName   string
	ContainerImage  string
	Cpu             int
	MemoryLimitMiB  int
	DesiredCount    int
	ApplicationPort int
	// SecurityGroupID attaches an existing group. Without it a group is
	// created that admits ApplicationPort from IngressSecurityGroupID.
	SecurityGroupID        any
	IngressSecurityGroupID any
	PolicyStatements       []PolicyStatement
	Environment            map[string]any
	Command                []string
	// TargetGroupArn registers the container with a load balancer. Listener
	// is the listener forwarding to it; the service waits for it.
	TargetGroupArn any
	Listener       stack.Handle
	// AssignPublicIp defaults to true and selects public subnets.
	AssignPublicIp *bool
}

// EcsService is a Fargate service.
type EcsService struct {
	service        stack.Handle
	taskDefinition stack.Handle
	taskRole       stack.Handle
	securityGroup  any
}

// NewEcsService creates a Fargate service running one container.
func NewEcsService(scope *stack.Scope, id string, props EcsServiceProps) (*EcsService, error) {
	if err := props.validate(); err != nil {
		return nil, fmt.Errorf("ecs service %s: %w", id, err)
	}
	scope = scope.Child(id)
	network := props.Cluster.Network()

	publicIP := props.AssignPublicIp == nil || *props.AssignPublicIp
	subnetType := networking.Private
	assign := "DISABLED"
	if publicIP {
		subnetType = networking.Public
		assign = "ENABLED"
	}
	subnets := network.SubnetIDs(subnetType)
	if len(subnets) == 0 {
		return nil, fmt.Errorf("ecs service %s: network has no %s subnets", scope.Path(), subnetType)
	}

	s := &EcsService{securityGroup: props.SecurityGroupID}
	if s.securityGroup == nil {
		var rules []networking.Rule
		if props.IngressSecurityGroupID != nil {
			rules = append(rules, networking.Rule{
				Name:                "Load balancer to service",
				PeerSecurityGroupID: props.IngressSecurityGroupID,
				Port:                props.ApplicationPort,
			})
		}
		sg, err := networking.NewSecurityGroups(scope, "SecurityGroup", networking.SecurityGroupsProps{
			Network:     network,
			Description: "ECS service " + scope.Path(),
			Rules:       rules,
		})
		if err != nil {
			return nil, err
		}
		s.securityGroup = sg.GroupID()
	}

	var err error
	s.taskRole, err = scope.Add("TaskRole", iam.Role{
		AssumeRolePolicyDocument: AssumeRolePolicy("ecs-tasks.amazonaws.com"),
	})
	if err != nil {
		return nil, err
	}

	// execute command needs the SSM message channels
	statements := []any{Allow([]string{
		"ssmmessages:CreateControlChannel",
		"ssmmessages:CreateDataChannel",
		"ssmmessages:OpenControlChannel",
		"ssmmessages:OpenDataChannel",
	})}
	for _, st := range props.PolicyStatements {
		statements = append(statements, st)
	}
	policy, err := scope.Add("TaskPolicy", iam.Policy{
		PolicyName:     scope.ID("TaskPolicy"),
		PolicyDocument: NewPolicyDocument(statements...),
		Roles:          []any{s.taskRole.Ref()},
	})
	if err != nil {
		return nil, err
	}

	executionRole, err := scope.Add("ExecutionRole", iam.Role{
		AssumeRolePolicyDocument: AssumeRolePolicy("ecs-tasks.amazonaws.com"),
		ManagedPolicyArns: []any{
			ManagedPolicyArn("service-role/AmazonECSTaskExecutionRolePolicy"),
		},
	})
	if err != nil {
		return nil, err
	}

	logGroup, err := scope.Add("LogGroup", logs.LogGroup{RetentionInDays: logRetentionDays})
	if err != nil {
		return nil, err
	}

	container := ecs.TaskDefinition_ContainerDefinition{
		Name:        props.ContainerName,
		Image:       props.ContainerImage,
		Memory:      props.MemoryLimitMiB,
		Essential:   true,
		Environment: environment(props.Environment),
		PortMappings: []ecs.TaskDefinition_PortMapping{
			{ContainerPort: props.ApplicationPort, Protocol: "tcp"},
		},
		LogConfiguration: awsLogs(logGroup, props.ContainerName),
	}
	for _, arg := range props.Command {
		container.Command = append(container.Command, arg)
	}

	s.taskDefinition, err = scope.Add("TaskDefinition", ecs.TaskDefinition{
		Family:                  scope.ID("Task"),
		Cpu:                     strconv.Itoa(props.Cpu),
		Memory:                  strconv.Itoa(props.MemoryLimitMiB),
		NetworkMode:             "awsvpc",
		RequiresCompatibilities: []any{"EC2", "FARGATE"},
		TaskRoleArn:             s.taskRole.GetAtt("Arn"),
		ExecutionRoleArn:        executionRole.GetAtt("Arn"),
		ContainerDefinitions:    []ecs.TaskDefinition_ContainerDefinition{container},
	})
	if err != nil {
		return nil, err
	}

	service := ecs.Service{
		Cluster:              props.Cluster.Name(),
		TaskDefinition:       s.taskDefinition.Ref(),
		DesiredCount:         props.DesiredCount,
		LaunchType:           "FARGATE",
		EnableExecuteCommand: true,
		NetworkConfiguration: &ecs.Service_NetworkConfiguration{
			AwsvpcConfiguration: &ecs.Service_AwsVpcConfiguration{
				AssignPublicIp: assign,
				SecurityGroups: []any{s.securityGroup},
				Subnets:        subnets,
			},
		},
	}
	if props.TargetGroupArn != nil {
		service.LoadBalancers = []ecs.Service_LoadBalancer{{
			ContainerName:  props.ContainerName,
			ContainerPort:  props.ApplicationPort,
			TargetGroupArn: props.TargetGroupArn,
		}}
		service.HealthCheckGracePeriodSeconds = 60
	}
	s.service, err = scope.Add("Service", service, stack.DependsOn(policy, props.Listener))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p EcsServiceProps) validate() error {
	var errs []error
	if p.Cluster == nil {
		errs = append(errs, errors.New("Cluster is required"))
	}
	if p.ContainerName == "" {
		errs = append(errs, errors.New("ContainerName is required"))
	}
	if p.ContainerImage == "" {
		errs = append(errs, errors.New("ContainerImage is required"))
	}
	if p.ApplicationPort <= 0 || p.ApplicationPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid application port %d", p.ApplicationPort))
	}
	if p.Cpu <= 0 || p.MemoryLimitMiB <= 0 {
		errs = append(errs, fmt.Errorf("cpu %d and memory %d must be positive", p.Cpu, p.MemoryLimitMiB))
	}
	if p.DesiredCount < 0 {
		errs = append(errs, fmt.Errorf("negative desired count %d", p.DesiredCount))
	}
	return errors.Join(errs...)
}

func (s *EcsService) Handle() stack.Handle         { return s.service }
func (s *EcsService) TaskDefinition() stack.Handle { return s.taskDefinition }
func (s *EcsService) TaskRole() stack.Handle       { return s.taskRole }
func (s *EcsService) SecurityGroupID() any         { return s.securityGroup }

// EcsEc2ServiceProps configures NewEcsEc2Service.
type EcsEc2ServiceProps struct {
	Cluster         *EcsCluster
	ContainerName   string
	ContainerImage  string
	Cpu             int
	MemoryLimitMiB  int
	ApplicationPort int
	DesiredCount    int
}

// EcsEc2Service is a service on EC2 capacity behind its own load balancer.
type EcsEc2Service struct {
	service stack.Handle
	alb     *alb.Alb
}

// NewEcsEc2Service runs a container in bridge mode on the cluster's EC2
// capacity and exposes it through an internet-facing load balancer on
// port 80 with a /health check.
func NewEcsEc2Service(scope *stack.Scope, id string, props EcsEc2ServiceProps) (*EcsEc2Service, error) {
	if props.Cluster == nil {
		return nil, fmt.Errorf("ecs ec2 service %s: Cluster is required", id)
	}
	if props.Cluster.CapacityProvider().IsZero() {
		return nil, fmt.Errorf("ecs ec2 service %s: cluster has no EC2 capacity", id)
	}
	if props.ContainerName == "" || props.ContainerImage == "" {
		return nil, fmt.Errorf("ecs ec2 service %s: ContainerName and ContainerImage are required", id)
	}
	scope = scope.Child(id)

	lb, err := alb.New(scope, "Alb", alb.Props{
		Network:             props.Cluster.Network(),
		ApplicationPort:     props.ApplicationPort,
		HealthCheckPath:     "/health",
		HealthCheckInterval: 60,
		HealthCheckTimeout:  5,
		TargetType:          "instance",
	})
	if err != nil {
		return nil, err
	}

	if _, err := scope.Add("AlbIngress", ec2.SecurityGroupIngress{
		GroupId:               props.Cluster.InstanceSecurityGroupID(),
		IpProtocol:            "tcp",
		FromPort:              props.ApplicationPort,
		ToPort:                props.ApplicationPort,
		SourceSecurityGroupId: lb.SecurityGroupID(),
		Description:           "Load balancer to " + props.ContainerName,
	}); err != nil {
		return nil, err
	}

	taskDefinition, err := scope.Add("TaskDefinition", ecs.TaskDefinition{
		NetworkMode:             "bridge",
		RequiresCompatibilities: []any{"EC2"},
		ContainerDefinitions: []ecs.TaskDefinition_ContainerDefinition{{
			Name:      props.ContainerName,
			Image:     props.ContainerImage,
			Cpu:       props.Cpu,
			Memory:    props.MemoryLimitMiB,
			Essential: true,
			PortMappings: []ecs.TaskDefinition_PortMapping{{
				ContainerPort: props.ApplicationPort,
				HostPort:      props.ApplicationPort,
				Protocol:      "tcp",
			}},
		}},
	})
	if err != nil {
		return nil, err
	}

	desired := props.DesiredCount
	if desired == 0 {
		desired = 1
	}
	service, err := scope.Add("Service", ecs.Service{
		Cluster:        props.Cluster.Name(),
		TaskDefinition: taskDefinition.Ref(),
		DesiredCount:   desired,
		CapacityProviderStrategy: []ecs.Service_CapacityProviderStrategyItem{
			{CapacityProvider: props.Cluster.CapacityProvider().Ref(), Weight: 1},
		},
		LoadBalancers: []ecs.Service_LoadBalancer{{
			ContainerName:  props.ContainerName,
			ContainerPort:  props.ApplicationPort,
			TargetGroupArn: lb.TargetGroupArn(),
		}},
	}, stack.DependsOn(lb.Listener()))
	if err != nil {
		return nil, err
	}

	return &EcsEc2Service{service: service, alb: lb}, nil
}

func (s *EcsEc2Service) Handle() stack.Handle { return s.service }
func (s *EcsEc2Service) Alb() *alb.Alb        { return s.alb }

// DnsName is the load balancer DNS name.
func (s *EcsEc2Service) DnsName() GetAtt { return s.alb.DnsName() }

func environment(env map[string]any) []ecs.TaskDefinition_KeyValuePair {
	if len(env) == 0 {
		return nil
	}
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]ecs.TaskDefinition_KeyValuePair, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, ecs.TaskDefinition_KeyValuePair{Name: name, Value: env[name]})
	}
	return pairs
}

func awsLogs(group stack.Handle, prefix string) *ecs.TaskDefinition_LogConfiguration {
	return &ecs.TaskDefinition_LogConfiguration{
		LogDriver: "awslogs",
		Options: map[string]any{
			"awslogs-group":         group.Ref(),
			"awslogs-region":        AWS_REGION,
			"awslogs-stream-prefix": prefix,
		},
	}
}
