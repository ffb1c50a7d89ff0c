package stacks

import (
	"fmt"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/alb"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/compute"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/db"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	"github.com/lex00/wetwire-aws-constructs-go/internal/config"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// Service run when the config lists none.
var exampleService = config.EcsService{
	ContainerName:   "hello-world-app",
	ContainerImage:  "public.ecr.aws/tinystacks/aws-docker-templates-express:latest-x86",
	Cpu:             1024,
	MemoryLimitMiB:  2048,
	DesiredCount:    1,
	ApplicationPort: 3000,
}

// Ecs creates a VPC, a cluster and the configured services.
func Ecs(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	s, err := newStack(cfg, "ecs", "ECS cluster "+cfg.Ecs.ClusterName, deps)
	if err != nil {
		return nil, err
	}
	root := s.Root()

	vpc, err := newVpc(root, "Vpc", cfg)
	if err != nil {
		return nil, err
	}
	cluster, err := newEcsCluster(root, cfg, vpc)
	if err != nil {
		return nil, err
	}

	for _, svc := range cfg.Ecs.Services {
		if svc.Ec2 {
			ec2Service, err := compute.NewEcsEc2Service(root, svc.ContainerName, compute.EcsEc2ServiceProps{
				Cluster:         cluster,
				ContainerName:   svc.ContainerName,
				ContainerImage:  svc.ContainerImage,
				Cpu:             svc.Cpu,
				MemoryLimitMiB:  svc.MemoryLimitMiB,
				ApplicationPort: svc.ApplicationPort,
				DesiredCount:    svc.DesiredCount,
			})
			if err != nil {
				return nil, err
			}
			if err := root.Child(svc.ContainerName).AddOutput("DnsName", wetwire.Output{
				Description: "Load balancer of " + svc.ContainerName,
				Value:       ec2Service.DnsName(),
			}); err != nil {
				return nil, err
			}
			continue
		}

		props := serviceProps(svc, cluster)
		if svc.SecurityGroupID != "" {
			props.SecurityGroupID = svc.SecurityGroupID
		}
		if _, err := compute.NewEcsService(root, svc.ContainerName, props); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// EcsRdsRedis creates a VPC with Postgres, Redis and an ECS service that
// receives the coordinates of both.
func EcsRdsRedis(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	s, err := newStack(cfg, "ecs-rds-redis", "ECS service with Postgres and Redis", deps)
	if err != nil {
		return nil, err
	}
	root := s.Root()

	vpc, err := newVpc(root, "Vpc", cfg)
	if err != nil {
		return nil, err
	}

	services := cfg.Ecs.Services
	if len(services) == 0 {
		services = []config.EcsService{exampleService}
	}

	rules := []networking.Rule{
		{Name: "HTTP", Peer: networking.AnyIPv4, Port: 80},
		{Name: "HTTPS", Peer: networking.AnyIPv4, Port: 443},
		{Name: "Postgres", Peer: vpc.Cidr(), Port: 5432},
		{Name: "Redis", Peer: vpc.Cidr(), Port: db.RedisPort},
	}
	seen := map[int]bool{80: true, 443: true}
	for _, svc := range services {
		if !seen[svc.ApplicationPort] {
			seen[svc.ApplicationPort] = true
			rules = append(rules, networking.Rule{
				Name: svc.ContainerName,
				Peer: networking.AnyIPv4,
				Port: svc.ApplicationPort,
			})
		}
	}
	common, err := networking.NewSecurityGroups(root, "Common", networking.SecurityGroupsProps{
		Network:     vpc,
		Name:        cfg.Name + "-common",
		Description: "Application, database and cache access",
		Rules:       rules,
	})
	if err != nil {
		return nil, err
	}

	database, err := db.NewRds(root, "Database", rdsProps(cfg, vpc, common.GroupID()))
	if err != nil {
		return nil, err
	}
	cache, err := db.NewRedis(root, "Cache", db.RedisProps{
		Network:             vpc,
		SubnetIDs:           vpc.SubnetIDs(networking.Private),
		SecurityGroupIDs:    []any{common.GroupID()},
		InstanceType:        cfg.Redis.InstanceType,
		DbIdentifier:        cfg.Redis.DbIdentifier,
		PrimaryVpcCidrBlock: vpc.Cidr(),
	})
	if err != nil {
		return nil, err
	}

	cluster, err := newEcsCluster(root, cfg, vpc)
	if err != nil {
		return nil, err
	}

	env := map[string]any{
		"DB_HOST":          database.Endpoint(),
		"DB_PORT":          database.Port(),
		"DB_SECRET_ARN":    database.SecretArn(),
		"DB_NAME":          database.DatabaseName(),
		"DB_USERNAME":      database.DatabaseUsername(),
		"REDIS_ENDPOINT":   cache.Endpoint(),
		"REDIS_PORT":       cache.Port(),
		"REDIS_SECRET_ARN": cache.AuthTokenSecretArn(),
	}
	secrets := secretAccess(database.SecretArn(), cache.AuthTokenSecretArn())

	for _, svc := range services {
		props := serviceProps(svc, cluster)
		props.SecurityGroupID = common.GroupID()
		props.Environment = mergeEnv(env, props.Environment)
		props.PolicyStatements = append(props.PolicyStatements, secrets)
		if _, err := compute.NewEcsService(root, svc.ContainerName, props); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Stitcher creates a VPC with MySQL and Redis on isolated subnets and a
// Fargate service behind a load balancer.
func Stitcher(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	s, err := newStack(cfg, "stitcher", "Stitcher service with MySQL, Redis and a load balancer", deps)
	if err != nil {
		return nil, err
	}
	root := s.Root()

	vpc, err := newVpc(root, "Vpc", cfg,
		networking.SubnetGroup{Name: "Public", Type: networking.Public},
		networking.SubnetGroup{Name: "Private", Type: networking.Private},
		networking.SubnetGroup{Name: "Isolated", Type: networking.Isolated},
	)
	if err != nil {
		return nil, err
	}

	dataGroup, err := networking.NewSecurityGroups(root, "Data", networking.SecurityGroupsProps{
		Network:     vpc,
		Name:        cfg.Name + "-aurora-mysql-sl-sg",
		Description: "MySQL and Redis access",
		Rules:       []networking.Rule{{Name: "MySQL", Peer: vpc.Cidr(), Port: 3306}},
	})
	if err != nil {
		return nil, err
	}

	rds := rdsProps(cfg, vpc, dataGroup.GroupID())
	rds.Engine = "mysql"
	rds.EngineVersion = ""
	rds.Port = 0
	rds.DatabaseName = "mysqldb"
	if rds.BackupRetentionDays == 0 {
		rds.BackupRetentionDays = 10
	}
	database, err := db.NewRds(root, "Database", rds)
	if err != nil {
		return nil, err
	}

	cache, err := db.NewRedis(root, "Cache", db.RedisProps{
		Network:          vpc,
		SubnetIDs:        vpc.SubnetIDs(networking.Isolated),
		SecurityGroupIDs: []any{dataGroup.GroupID()},
		InstanceType:     cfg.Redis.InstanceType,
		DbIdentifier:     "stitcher-stack-redis-cluster",
	})
	if err != nil {
		return nil, err
	}

	cluster, err := compute.NewEcsCluster(root, "Cluster", compute.EcsClusterProps{
		ClusterName: "stitcher-stack-ecs-cluster",
		Network:     vpc,
	})
	if err != nil {
		return nil, err
	}

	const appPort = 3000
	lb, err := alb.New(root, "LoadBalancer", alb.Props{
		Network:                 vpc,
		ApplicationPort:         appPort,
		HealthCheckPath:         cfg.Alb.HealthCheckPath,
		ListenerPort:            cfg.Alb.ListenerPort,
		ListenerCertificateArns: cfg.Alb.CertificateArns,
	})
	if err != nil {
		return nil, err
	}

	_, err = compute.NewEcsService(root, "Service", compute.EcsServiceProps{
		Cluster:                cluster,
		ContainerName:          "stitcher-stack-ecs-container",
		ContainerImage:         exampleService.ContainerImage,
		Cpu:                    256,
		MemoryLimitMiB:         512,
		DesiredCount:           1,
		ApplicationPort:        appPort,
		IngressSecurityGroupID: lb.SecurityGroupID(),
		TargetGroupArn:         lb.TargetGroupArn(),
		Listener:               lb.Listener(),
		PolicyStatements:       []PolicyStatement{secretAccess(database.SecretArn())},
		Environment: mergeEnv(map[string]any{
			"AURORA_MYSQL_SECRET": database.SecretArn(),
			"DB_HOST":             database.Endpoint(),
			"DB_PORT":             database.Port(),
			"DB_NAME":             database.DatabaseName(),
			"REDIS_HOST":          cache.Endpoint(),
			"REDIS_PORT":          cache.Port(),
			"REDIS_PASSWORD":      cache.AuthTokenSecretArn(),
		}, nil),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newEcsCluster(scope *stack.Scope, cfg *config.Config, network networking.Network) (*compute.EcsCluster, error) {
	props := compute.EcsClusterProps{
		ClusterName: cfg.Ecs.ClusterName,
		Network:     network,
	}
	if c := cfg.Ecs.Capacity; c != nil {
		props.Capacity = &compute.Ec2Capacity{
			InstanceType:    c.InstanceType,
			DesiredCapacity: c.DesiredCapacity,
		}
	}
	cluster, err := compute.NewEcsCluster(scope, "Cluster", props)
	if err != nil {
		return nil, fmt.Errorf("ecs cluster: %w", err)
	}
	return cluster, nil
}

func serviceProps(svc config.EcsService, cluster *compute.EcsCluster) compute.EcsServiceProps {
	return compute.EcsServiceProps{
		Cluster:          cluster,
		ContainerName:    svc.ContainerName,
		ContainerImage:   svc.ContainerImage,
		Cpu:              svc.Cpu,
		MemoryLimitMiB:   svc.MemoryLimitMiB,
		DesiredCount:     svc.DesiredCount,
		ApplicationPort:  svc.ApplicationPort,
		PolicyStatements: statements(svc.PolicyStatements),
		Environment:      environment(svc.Environment),
		Command:          svc.Command,
	}
}

// secretAccess grants read access to the non-nil secrets.
func secretAccess(arns ...any) PolicyStatement {
	var resources []any
	for _, arn := range arns {
		if arn != nil {
			resources = append(resources, arn)
		}
	}
	return Allow([]string{"secretsmanager:GetSecretValue"}, resources...)
}

// mergeEnv layers override on base, dropping unset values.
func mergeEnv(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		if v != nil {
			out[k] = v
		}
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
