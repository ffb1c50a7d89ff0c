// Package elasticloadbalancingv2 provides typed AWS::ElasticLoadBalancingV2 resources.
package elasticloadbalancingv2

// LoadBalancer represents AWS::ElasticLoadBalancingV2::LoadBalancer.
type LoadBalancer struct {
	Name           any   `json:"Name,omitempty"`
	Type           any   `json:"Type,omitempty"`
	Scheme         any   `json:"Scheme,omitempty"`
	IpAddressType  any   `json:"IpAddressType,omitempty"`
	Subnets        []any `json:"Subnets,omitempty"`
	SecurityGroups []any `json:"SecurityGroups,omitempty"`
	Tags           []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r LoadBalancer) ResourceType() string { return "AWS::ElasticLoadBalancingV2::LoadBalancer" }

// TargetGroup represents AWS::ElasticLoadBalancingV2::TargetGroup.
type TargetGroup struct {
	Name                       any                  `json:"Name,omitempty"`
	Port                       any                  `json:"Port,omitempty"`
	Protocol                   any                  `json:"Protocol,omitempty"`
	TargetType                 any                  `json:"TargetType,omitempty"`
	VpcId                      any                  `json:"VpcId,omitempty"`
	HealthCheckEnabled         any                  `json:"HealthCheckEnabled,omitempty"`
	HealthCheckPath            any                  `json:"HealthCheckPath,omitempty"`
	HealthCheckProtocol        any                  `json:"HealthCheckProtocol,omitempty"`
	HealthCheckIntervalSeconds any                  `json:"HealthCheckIntervalSeconds,omitempty"`
	HealthCheckTimeoutSeconds  any                  `json:"HealthCheckTimeoutSeconds,omitempty"`
	HealthyThresholdCount      any                  `json:"HealthyThresholdCount,omitempty"`
	UnhealthyThresholdCount    any                  `json:"UnhealthyThresholdCount,omitempty"`
	Matcher                    *TargetGroup_Matcher `json:"Matcher,omitempty"`
	Tags                       []any                `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r TargetGroup) ResourceType() string { return "AWS::ElasticLoadBalancingV2::TargetGroup" }

// TargetGroup_Matcher lists the HTTP codes treated as healthy.
type TargetGroup_Matcher struct {
	HttpCode any `json:"HttpCode,omitempty"`
}

// Listener represents AWS::ElasticLoadBalancingV2::Listener.
type Listener struct {
	LoadBalancerArn any                    `json:"LoadBalancerArn,omitempty"`
	Port            any                    `json:"Port,omitempty"`
	Protocol        any                    `json:"Protocol,omitempty"`
	SslPolicy       any                    `json:"SslPolicy,omitempty"`
	Certificates    []Listener_Certificate `json:"Certificates,omitempty"`
	DefaultActions  []Listener_Action      `json:"DefaultActions,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Listener) ResourceType() string { return "AWS::ElasticLoadBalancingV2::Listener" }

// Listener_Certificate references an ACM certificate.
type Listener_Certificate struct {
	CertificateArn any `json:"CertificateArn,omitempty"`
}

// Listener_Action is a listener default action.
type Listener_Action struct {
	Type           any `json:"Type,omitempty"`
	TargetGroupArn any `json:"TargetGroupArn,omitempty"`
}
