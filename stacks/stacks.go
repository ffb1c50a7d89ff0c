// Package stacks assembles ready-made stacks from the constructs, driven by
// the YAML config.
package stacks

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/custom"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	"github.com/lex00/wetwire-aws-constructs-go/internal/config"
	"github.com/lex00/wetwire-aws-constructs-go/internal/lookup"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// ErrUnknownStack is returned for names missing from the registry.
var ErrUnknownStack = errors.New("unknown stack")

// ErrLookupDisabled is returned by stacks that need existing infrastructure
// when no Lookup is configured.
var ErrLookupDisabled = errors.New("lookup is disabled")

// Lookup resolves existing infrastructure. *lookup.Client implements it.
type Lookup interface {
	Parameter(ctx context.Context, name string) (string, error)
	Vpc(ctx context.Context, id string) (lookup.Vpc, error)
	VpcFromParameter(ctx context.Context, name string) (lookup.Vpc, error)
}

// Deps carries what factories need besides the config.
type Deps struct {
	Context context.Context
	Logger  *zap.Logger
	// Lookup is nil unless lookups are enabled.
	Lookup Lookup
}

func (d Deps) ctx() context.Context {
	if d.Context == nil {
		return context.Background()
	}
	return d.Context
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Factory builds a stack from the config.
type Factory func(cfg *config.Config, deps Deps) (*stack.Stack, error)

// Entry is a registered stack.
type Entry struct {
	Name        string
	Description string
	// NeedsLookup is set for stacks built on an existing VPC.
	NeedsLookup bool
	Factory     Factory
}

// Registry maps stack names to entries.
type Registry map[string]Entry

// Default returns the built-in stacks.
func Default() Registry {
	r := Registry{}
	for _, e := range []Entry{
		{Name: "vpc", Description: "VPC with its ID published to SSM", Factory: Vpc},
		{Name: "eks", Description: "EKS cluster in the VPC published by the vpc stack", NeedsLookup: true, Factory: Eks},
		{Name: "eks-rds", Description: "VPC, Postgres and an EKS cluster running a chart wired to the database", Factory: EksRds},
		{Name: "ecs", Description: "VPC and ECS cluster with the configured Fargate services", Factory: Ecs},
		{Name: "ecs-rds-redis", Description: "VPC, Postgres, Redis and an ECS service wired to both", Factory: EcsRdsRedis},
		{Name: "stitcher", Description: "VPC, MySQL, Redis, ALB and an ECS service behind it", Factory: Stitcher},
		{Name: "redis", Description: "Redis replication group in an existing VPC", Factory: Redis},
		{Name: "s3", Description: "S3 bucket, created or imported", Factory: S3},
		{Name: "alb", Description: "Ingress load balancer for the cluster of the eks stack", NeedsLookup: true, Factory: Alb},
	} {
		r[e.Name] = e
	}
	return r
}

// Names returns the registered names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build runs the factory registered under name.
func (r Registry) Build(name string, cfg *config.Config, deps Deps) (*stack.Stack, error) {
	e, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownStack, name, r.Names())
	}
	if e.NeedsLookup && deps.Lookup == nil {
		return nil, fmt.Errorf("stack %s: %w; set lookup.enabled or pass --lookup", name, ErrLookupDisabled)
	}
	deps.logger().Debug("building stack", zap.String("stack", name))
	return e.Factory(cfg, deps)
}

// newStack applies the settings every stack shares.
func newStack(cfg *config.Config, name, description string, deps Deps) (*stack.Stack, error) {
	tags := map[string]string{"wetwire:stack": name}
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	s := stack.New(cfg.Name+"-"+name,
		stack.WithDescription(description),
		stack.WithLogger(deps.logger()),
		stack.WithEnv(cfg.Account, cfg.Region),
		stack.WithTags(tags),
	)
	if cfg.Handler.Bucket != "" {
		if err := custom.SetCode(s, cfg.Handler.Bucket, cfg.Handler.Key); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// newVpc creates the stack's own VPC from cfg.Vpc.
func newVpc(scope *stack.Scope, id string, cfg *config.Config, groups ...networking.SubnetGroup) (*networking.Vpc, error) {
	internet := cfg.Vpc.InternetAccess
	props := networking.VpcProps{
		CidrBlock:      cfg.Vpc.CidrBlock,
		Seed:           cfg.Vpc.Seed,
		AzCount:        cfg.Vpc.AzCount,
		InternetAccess: &internet,
		NatGateways:    cfg.Vpc.NatGateways,
		SubnetGroups:   groups,
	}
	for _, p := range cfg.Vpc.ExternalPeers {
		props.ExternalPeers = append(props.ExternalPeers, networking.ExternalVpcPeer{
			VpcID:               p.VpcID,
			CidrBlock:           p.CidrBlock,
			PeerOwnerID:         p.PeerOwnerID,
			PeerRegion:          p.PeerRegion,
			RouteTableIDs:       p.RouteTableIDs,
			EnableDnsResolution: p.EnableDnsResolution,
		})
	}
	return networking.NewVpc(scope, id, props)
}

// existingVpc resolves the VPC named by vpc.vpcId, or the one whose ID the
// vpc stack published under vpc.vpcIdParameter.
func existingVpc(cfg *config.Config, deps Deps) (*networking.ImportedVpc, error) {
	var (
		v   lookup.Vpc
		err error
	)
	if cfg.Vpc.VpcID != "" {
		v, err = deps.Lookup.Vpc(deps.ctx(), cfg.Vpc.VpcID)
	} else {
		v, err = deps.Lookup.VpcFromParameter(deps.ctx(), cfg.Vpc.VpcIDParameter)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving vpc: %w", err)
	}
	return v.Import()
}

func statements(in []config.Statement) []PolicyStatement {
	out := make([]PolicyStatement, 0, len(in))
	for _, st := range in {
		resources := make([]any, 0, len(st.Resources))
		for _, r := range st.Resources {
			resources = append(resources, r)
		}
		out = append(out, Allow(st.Actions, resources...))
	}
	return out
}

func environment(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
