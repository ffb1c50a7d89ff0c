package stacks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/internal/config"
	"github.com/lex00/wetwire-aws-constructs-go/internal/lookup"
)

type fakeLookup struct {
	params  map[string]string
	vpc     lookup.Vpc
	fetched []string
}

func (f *fakeLookup) Parameter(_ context.Context, name string) (string, error) {
	f.fetched = append(f.fetched, name)
	v, ok := f.params[name]
	if !ok {
		return "", lookup.ErrNotFound
	}
	return v, nil
}

func (f *fakeLookup) Vpc(_ context.Context, id string) (lookup.Vpc, error) {
	f.fetched = append(f.fetched, id)
	return f.vpc, nil
}

func (f *fakeLookup) VpcFromParameter(ctx context.Context, name string) (lookup.Vpc, error) {
	id, err := f.Parameter(ctx, name)
	if err != nil {
		return lookup.Vpc{}, err
	}
	return f.Vpc(ctx, id)
}

func newLookup() *fakeLookup {
	return &fakeLookup{
		params: map[string]string{
			"vpcId":                 "vpc-1",
			"/eks/eks-cluster/name": "eks-cluster",
		},
		vpc: lookup.Vpc{
			VpcID:                "vpc-1",
			CidrBlock:            "10.1.0.0/16",
			AvailabilityZones:    []string{"us-east-1a", "us-east-1b"},
			PublicSubnetIDs:      []string{"subnet-pub-a", "subnet-pub-b"},
			PrivateSubnetIDs:     []string{"subnet-priv-a", "subnet-priv-b"},
			PublicRouteTableIDs:  []string{"rtb-pub", "rtb-pub"},
			PrivateRouteTableIDs: []string{"rtb-priv-a", "rtb-priv-b"},
		},
	}
}

func build(t *testing.T, name string, cfg *config.Config, deps Deps) *wetwire.Template {
	t.Helper()
	s, err := Default().Build(name, cfg, deps)
	require.NoError(t, err)
	tmpl, _, err := s.Synth()
	require.NoError(t, err)
	return tmpl
}

func ofType(tmpl *wetwire.Template, typ string) map[string]wetwire.ResourceDef {
	out := make(map[string]wetwire.ResourceDef)
	for id, r := range tmpl.Resources {
		if r.Type == typ {
			out[id] = r
		}
	}
	return out
}

func TestDefault_Names(t *testing.T) {
	assert.Equal(t, []string{
		"alb", "ecs", "ecs-rds-redis", "eks", "eks-rds", "redis", "s3", "stitcher", "vpc",
	}, Default().Names())
}

func TestBuild_Unknown(t *testing.T) {
	_, err := Default().Build("nope", config.Default(), Deps{})
	assert.ErrorIs(t, err, ErrUnknownStack)
}

func TestBuild_NeedsLookup(t *testing.T) {
	for _, name := range []string{"eks", "alb"} {
		t.Run(name, func(t *testing.T) {
			_, err := Default().Build(name, config.Default(), Deps{})
			assert.ErrorIs(t, err, ErrLookupDisabled)
		})
	}
}

func TestEveryStackSynthesizes(t *testing.T) {
	for _, name := range Default().Names() {
		t.Run(name, func(t *testing.T) {
			tmpl := build(t, name, config.Default(), Deps{Lookup: newLookup()})
			assert.NotEmpty(t, tmpl.Resources)
			assert.NotEmpty(t, tmpl.Description)
		})
	}
}

func TestVpc_PublishesID(t *testing.T) {
	tmpl := build(t, "vpc", config.Default(), Deps{})

	params := ofType(tmpl, "AWS::SSM::Parameter")
	require.Len(t, params, 1)
	p := params["VpcIdParameter"]
	assert.Equal(t, "vpcId", p.Properties["Name"])
	assert.Contains(t, p.Properties["Value"], "Ref")

	require.Contains(t, tmpl.Outputs, "VpcId")
	assert.Equal(t, "wetwire-vpc-id", tmpl.Outputs["VpcId"].Export.Name)
	assert.Equal(t, "10.1.0.0/16", tmpl.Outputs["VpcCidrBlock"].Value)
}

func TestStacks_TagEverything(t *testing.T) {
	cfg := config.Default()
	cfg.Tags = map[string]string{"team": "platform"}
	tmpl := build(t, "vpc", cfg, Deps{})

	for id, r := range ofType(tmpl, "AWS::EC2::Subnet") {
		tags, _ := r.Properties["Tags"].([]any)
		assert.Contains(t, tags, map[string]any{"Key": "team", "Value": "platform"}, id)
		assert.Contains(t, tags, map[string]any{"Key": "wetwire:stack", "Value": "vpc"}, id)
	}
}

func TestEks_UsesLookedUpVpc(t *testing.T) {
	l := newLookup()
	tmpl := build(t, "eks", config.Default(), Deps{Lookup: l})

	assert.Equal(t, []string{"vpcId", "vpc-1"}, l.fetched)
	assert.Empty(t, ofType(tmpl, "AWS::EC2::VPC"))

	clusters := ofType(tmpl, "AWS::EKS::Cluster")
	require.Len(t, clusters, 1)
	for _, c := range clusters {
		vpcConfig := c.Properties["ResourcesVpcConfig"].(map[string]any)
		assert.Contains(t, vpcConfig["SubnetIds"], "subnet-pub-a")
	}
	// imported subnets are tagged through the custom resource
	assert.NotEmpty(t, ofType(tmpl, "Custom::SubnetTagging"))
}

func TestEks_VpcIDWinsOverParameter(t *testing.T) {
	l := newLookup()
	cfg := config.Default()
	cfg.Vpc.VpcID = "vpc-explicit"
	build(t, "eks", cfg, Deps{Lookup: l})

	assert.Equal(t, []string{"vpc-explicit"}, l.fetched)
}

func TestHandlerCode(t *testing.T) {
	tmpl := build(t, "eks", config.Default(), Deps{Lookup: newLookup()})
	assert.Contains(t, tmpl.Parameters, "HandlerCodeBucket")

	cfg := config.Default()
	cfg.Handler = config.Handler{Bucket: "artifacts", Key: "handler.zip"}
	tmpl = build(t, "eks", cfg, Deps{Lookup: newLookup()})
	assert.NotContains(t, tmpl.Parameters, "HandlerCodeBucket")
}

func TestEksRds_ChartGetsDatabase(t *testing.T) {
	tmpl := build(t, "eks-rds", config.Default(), Deps{})

	require.Len(t, ofType(tmpl, "AWS::RDS::DBInstance"), 1)
	charts := ofType(tmpl, "AWSQS::Kubernetes::Helm")
	var found bool
	for _, c := range charts {
		if c.Properties["Chart"] != exampleChart {
			continue
		}
		found = true
		values := c.Properties["Values"].(map[string]any)
		assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"DatabaseInstance", "Endpoint.Address"}}, values["DB_HOST"])
		assert.Equal(t, "tstesting", values["DB_NAME"])
	}
	assert.True(t, found, "example chart installed")
}

func TestEcs_Services(t *testing.T) {
	cfg := config.Default()
	cfg.Ecs.Capacity = &config.EcsCapacity{InstanceType: "t3.small", DesiredCapacity: 1}
	cfg.Ecs.Services = []config.EcsService{
		{
			ContainerName: "api", ContainerImage: "nginx", Cpu: 256, MemoryLimitMiB: 512,
			DesiredCount: 1, ApplicationPort: 80, SecurityGroupID: "sg-existing",
			Environment: map[string]string{"MODE": "prod"},
		},
		{
			ContainerName: "worker", ContainerImage: "nginx", Cpu: 256, MemoryLimitMiB: 256,
			DesiredCount: 1, ApplicationPort: 8080, Ec2: true,
		},
	}
	tmpl := build(t, "ecs", cfg, Deps{})

	services := ofType(tmpl, "AWS::ECS::Service")
	require.Len(t, services, 2)
	api := services["ApiService"]
	network := api.Properties["NetworkConfiguration"].(map[string]any)["AwsvpcConfiguration"].(map[string]any)
	assert.Equal(t, []any{"sg-existing"}, network["SecurityGroups"])

	assert.Contains(t, tmpl.Outputs, "WorkerDnsName")
	assert.Len(t, ofType(tmpl, "AWS::AutoScaling::AutoScalingGroup"), 1)
}

func TestEcsRdsRedis(t *testing.T) {
	tmpl := build(t, "ecs-rds-redis", config.Default(), Deps{})

	require.Len(t, ofType(tmpl, "AWS::ElastiCache::ReplicationGroup"), 1)
	defs := ofType(tmpl, "AWS::ECS::TaskDefinition")
	require.Len(t, defs, 1)
	for _, d := range defs {
		container := d.Properties["ContainerDefinitions"].([]any)[0].(map[string]any)
		names := map[string]bool{}
		for _, e := range container["Environment"].([]any) {
			names[e.(map[string]any)["Name"].(string)] = true
		}
		for _, want := range []string{"DB_HOST", "DB_SECRET_ARN", "REDIS_ENDPOINT", "REDIS_SECRET_ARN"} {
			assert.True(t, names[want], want)
		}
	}
}

func TestStitcher(t *testing.T) {
	tmpl := build(t, "stitcher", config.Default(), Deps{})

	dbs := ofType(tmpl, "AWS::RDS::DBInstance")
	require.Len(t, dbs, 1)
	for _, d := range dbs {
		assert.Equal(t, "mysql", d.Properties["Engine"])
		assert.EqualValues(t, 10, d.Properties["BackupRetentionPeriod"])
	}
	assert.Len(t, ofType(tmpl, "AWS::ElasticLoadBalancingV2::LoadBalancer"), 1)

	services := ofType(tmpl, "AWS::ECS::Service")
	require.Len(t, services, 1)
	for _, svc := range services {
		assert.NotEmpty(t, svc.Properties["LoadBalancers"])
	}
}

func TestRedis(t *testing.T) {
	t.Run("explicit subnets", func(t *testing.T) {
		cfg := config.Default()
		cfg.Redis.VpcID = "vpc-0b4062306eb4cac1b"
		cfg.Redis.AvailabilityZones = []string{"us-west-2a", "us-west-2b"}
		cfg.Redis.SubnetIDs = []string{"subnet-1", "subnet-2"}
		cfg.Redis.SecurityGroupIDs = []string{"sg-1"}

		tmpl := build(t, "redis", cfg, Deps{})
		groups := ofType(tmpl, "AWS::ElastiCache::SubnetGroup")
		require.Len(t, groups, 1)
		for _, g := range groups {
			assert.Equal(t, []any{"subnet-1", "subnet-2"}, g.Properties["SubnetIds"])
		}
	})

	t.Run("no network", func(t *testing.T) {
		_, err := Default().Build("redis", config.Default(), Deps{})
		assert.ErrorIs(t, err, ErrLookupDisabled)
	})

	t.Run("subnets without vpc", func(t *testing.T) {
		cfg := config.Default()
		cfg.Redis.SubnetIDs = []string{"subnet-1", "subnet-2"}
		_, err := Default().Build("redis", cfg, Deps{})
		assert.Error(t, err)
	})
}

func TestS3(t *testing.T) {
	cfg := config.Default()
	cfg.S3.BucketName = "assets"
	tmpl := build(t, "s3", cfg, Deps{})

	assert.Len(t, ofType(tmpl, "AWS::S3::Bucket"), 1)
	assert.Contains(t, tmpl.Outputs, "BucketBucketName")

	cfg.S3.ExistingBucketArn = "arn:aws:s3:::existing"
	_, err := Default().Build("s3", cfg, Deps{})
	require.NoError(t, err)
}

func TestAlb_ReadsClusterName(t *testing.T) {
	l := newLookup()
	tmpl := build(t, "alb", config.Default(), Deps{Lookup: l})

	assert.Contains(t, l.fetched, "/eks/eks-cluster/name")
	lbs := ofType(tmpl, "AWS::ElasticLoadBalancingV2::LoadBalancer")
	require.Len(t, lbs, 1)
	for _, lb := range lbs {
		assert.Contains(t, lb.Properties["Tags"], map[string]any{"Key": "ingress.k8s.aws/stack", "Value": LoadBalancerControllerStack})
	}
}

func TestAlb_MissingClusterParameter(t *testing.T) {
	l := newLookup()
	delete(l.params, "/eks/eks-cluster/name")

	_, err := Default().Build("alb", config.Default(), Deps{Lookup: l})
	assert.ErrorIs(t, err, lookup.ErrNotFound)
}
