// Package alb provides an internet-facing application load balancer that
// forwards one listener to an IP target group.
package alb

import (
	"errors"
	"fmt"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	elbv2 "github.com/lex00/wetwire-aws-constructs-go/resources/elasticloadbalancingv2"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

const (
	defaultListenerPort = 80
	defaultSslPolicy    = "ELBSecurityPolicy-2016-08"
)

// Props configures New.
type Props struct {
	Network         networking.Network
	ApplicationPort int
	HealthCheckPath string
	// SecurityGroupID replaces the security group opened on ListenerPort.
	SecurityGroupID any
	// ListenerPort defaults to 80.
	ListenerPort int
	// ListenerCertificateArns switch the listener to HTTPS.
	ListenerCertificateArns []string
	// TargetType defaults to ip. Tasks in bridge network mode register as instance.
	TargetType string
	// Health check timing in seconds; zero keeps the service defaults.
	HealthCheckInterval int
	HealthCheckTimeout  int
}

// Alb is the load balancer with its listener and target group.
type Alb struct {
	lb            stack.Handle
	targetGroup   stack.Handle
	listener      stack.Handle
	securityGroup any
}

// New creates the load balancer on the public subnets of the network.
func New(scope *stack.Scope, id string, props Props) (*Alb, error) {
	if err := props.validate(); err != nil {
		return nil, fmt.Errorf("alb %s: %w", id, err)
	}
	scope = scope.Child(id)

	subnets := props.Network.SubnetIDs(networking.Public)
	if len(subnets) == 0 {
		return nil, fmt.Errorf("alb %s: network has no public subnets", scope.Path())
	}

	listenerPort := props.ListenerPort
	if listenerPort == 0 {
		listenerPort = defaultListenerPort
	}

	a := &Alb{securityGroup: props.SecurityGroupID}
	if a.securityGroup == nil {
		sg, err := networking.NewSecurityGroups(scope, "SecurityGroup", networking.SecurityGroupsProps{
			Network:     props.Network,
			Description: "Internet to " + scope.Path(),
			Rules: []networking.Rule{
				{Name: "Internet to ALB", Peer: networking.AnyIPv4, Port: listenerPort},
			},
		})
		if err != nil {
			return nil, err
		}
		a.securityGroup = sg.GroupID()
	}

	var err error
	a.lb, err = scope.Add("LoadBalancer", elbv2.LoadBalancer{
		Type:           "application",
		Scheme:         "internet-facing",
		IpAddressType:  "ipv4",
		Subnets:        subnets,
		SecurityGroups: []any{a.securityGroup},
	})
	if err != nil {
		return nil, err
	}

	targetType := props.TargetType
	if targetType == "" {
		targetType = "ip"
	}
	targetGroup := elbv2.TargetGroup{
		Port:                props.ApplicationPort,
		Protocol:            "HTTP",
		TargetType:          targetType,
		VpcId:               props.Network.VpcID(),
		HealthCheckEnabled:  true,
		HealthCheckPath:     props.HealthCheckPath,
		HealthCheckProtocol: "HTTP",
	}
	if props.HealthCheckInterval > 0 {
		targetGroup.HealthCheckIntervalSeconds = props.HealthCheckInterval
	}
	if props.HealthCheckTimeout > 0 {
		targetGroup.HealthCheckTimeoutSeconds = props.HealthCheckTimeout
	}
	a.targetGroup, err = scope.Add("TargetGroup", targetGroup)
	if err != nil {
		return nil, err
	}

	listener := elbv2.Listener{
		LoadBalancerArn: a.lb.Ref(),
		Port:            listenerPort,
		Protocol:        "HTTP",
		DefaultActions: []elbv2.Listener_Action{{
			Type:           "forward",
			TargetGroupArn: a.targetGroup.Ref(),
		}},
	}
	if len(props.ListenerCertificateArns) > 0 {
		listener.Protocol = "HTTPS"
		listener.SslPolicy = defaultSslPolicy
		for _, arn := range props.ListenerCertificateArns {
			listener.Certificates = append(listener.Certificates, elbv2.Listener_Certificate{CertificateArn: arn})
		}
	}
	a.listener, err = scope.Add("Listener", listener)
	if err != nil {
		return nil, err
	}

	if err := scope.AddOutput("DnsName", wetwire.Output{
		Description: "DNS name of " + scope.Path(),
		Value:       a.DnsName(),
	}); err != nil {
		return nil, err
	}
	return a, nil
}

func (p Props) validate() error {
	if p.Network == nil {
		return errors.New("Network is required")
	}
	if p.ApplicationPort <= 0 || p.ApplicationPort > 65535 {
		return fmt.Errorf("invalid application port %d", p.ApplicationPort)
	}
	if p.ListenerPort < 0 || p.ListenerPort > 65535 {
		return fmt.Errorf("invalid listener port %d", p.ListenerPort)
	}
	if p.TargetType != "" && p.TargetType != "ip" && p.TargetType != "instance" {
		return fmt.Errorf("unsupported target type %q", p.TargetType)
	}
	if p.HealthCheckPath == "" || p.HealthCheckPath[0] != '/' {
		return fmt.Errorf("health check path %q must start with /", p.HealthCheckPath)
	}
	return nil
}

func (a *Alb) TargetGroupArn() Ref    { return a.targetGroup.Ref() }
func (a *Alb) LoadBalancerArn() Ref   { return a.lb.Ref() }
func (a *Alb) DnsName() GetAtt        { return a.lb.GetAtt("DNSName") }
func (a *Alb) SecurityGroupID() any   { return a.securityGroup }
func (a *Alb) Listener() stack.Handle { return a.listener }
