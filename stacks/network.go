package stacks

import (
	"fmt"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/compute"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	"github.com/lex00/wetwire-aws-constructs-go/internal/config"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ssm"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// LoadBalancerControllerStack is the stack tag the ingress load balancer
// carries, naming the controller that adopts it.
const LoadBalancerControllerStack = "aws-load-balancer-controller"

// Vpc creates the shared VPC and publishes its ID in the SSM parameter the
// eks and alb stacks read.
func Vpc(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	s, err := newStack(cfg, "vpc", "Shared VPC", deps)
	if err != nil {
		return nil, err
	}
	root := s.Root()

	vpc, err := newVpc(root, "Vpc", cfg)
	if err != nil {
		return nil, err
	}

	if _, err := root.Add("VpcIdParameter", ssm.Parameter{
		Name:        cfg.Vpc.VpcIDParameter,
		Description: "ID of the " + cfg.Name + " VPC",
		Type:        "String",
		Value:       vpc.VpcID(),
	}); err != nil {
		return nil, err
	}

	if err := root.AddOutput("VpcId", wetwire.Output{
		Description: "VPC ID",
		Value:       vpc.VpcID(),
		Export:      &wetwire.Export{Name: cfg.Name + "-vpc-id"},
	}); err != nil {
		return nil, err
	}
	if err := root.AddOutput("VpcCidrBlock", wetwire.Output{
		Description: "VPC CIDR block",
		Value:       vpc.Cidr(),
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Alb creates an internet-facing load balancer in the existing VPC, tagged
// for the load balancer controller of the cluster the eks stack published.
func Alb(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	network, err := existingVpc(cfg, deps)
	if err != nil {
		return nil, err
	}
	clusterName, err := deps.Lookup.Parameter(deps.ctx(), compute.ClusterNameParameterName(cfg.Eks.ClusterName))
	if err != nil {
		return nil, fmt.Errorf("resolving cluster name: %w", err)
	}

	s, err := newStack(cfg, "alb", "Ingress load balancer for "+clusterName, deps)
	if err != nil {
		return nil, err
	}

	lb, err := networking.NewIngressAlb(s.Root(), "Ingress", networking.IngressAlbProps{
		Network:        network,
		Name:           cfg.Name + "-ingress",
		InternetAccess: true,
		ClusterName:    clusterName,
		StackName:      LoadBalancerControllerStack,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Root().AddOutput("LoadBalancerDnsName", wetwire.Output{
		Description: "DNS name of the ingress load balancer",
		Value:       lb.DnsName(),
	}); err != nil {
		return nil, err
	}
	return s, nil
}
