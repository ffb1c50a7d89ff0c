package compute

import (
	"fmt"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/eks"
	"github.com/lex00/wetwire-aws-constructs-go/resources/iam"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ssm"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// AWS Load Balancer Controller chart.
const (
	LoadBalancerControllerChart          = "aws-load-balancer-controller"
	LoadBalancerControllerRepository     = "https://aws.github.io/eks-charts"
	LoadBalancerControllerVersion        = "1.4.3"
	LoadBalancerControllerServiceAccount = "aws-load-balancer-controller"
	LoadBalancerControllerNamespace      = "default"
)

// InternalElbTag marks subnets for internal load balancers.
const InternalElbTag = "kubernetes.io/role/internal-elb"

const (
	defaultNodeInstanceType = "t2.medium"
	defaultMinCapacity      = 3
	podIdentityAgentAddon   = "eks-pod-identity-agent"
)

// LoadBalancerControllerProps overrides the controller chart.
type LoadBalancerControllerProps struct {
	ChartVersion string
	Namespace    string
}

// EksProps configures NewEks.
type EksProps struct {
	Network     networking.Network
	ClusterName string
	Version     string
	// InternetAccess places nodes in public subnets instead of private ones.
	InternetAccess bool
	InstanceType   string
	MinCapacity    int

	LoadBalancerController LoadBalancerControllerProps
	// ClusterNameParameter is the SSM parameter holding the cluster name.
	// Defaults to ClusterNameParameterName(ClusterName).
	ClusterNameParameter string
	// Charts are installed once the controller is running.
	Charts []EksHelmChartProps
}

// Eks is a cluster with nodes and the AWS Load Balancer Controller.
type Eks struct {
	cluster    *EksCluster
	nodegroup  *EksNodegroup
	cleanup    *EksCleanup
	controller stack.Handle
	parameter  string
}

// ClusterNameParameterName is the default SSM parameter for a cluster name.
func ClusterNameParameterName(clusterName string) string {
	return "/eks/" + clusterName + "/name"
}

// NewEks creates a cluster and everything needed to run ingress on it.
func NewEks(scope *stack.Scope, id string, props EksProps) (*Eks, error) {
	if props.Network == nil {
		return nil, fmt.Errorf("eks %s: Network is required", id)
	}
	if props.ClusterName == "" {
		return nil, fmt.Errorf("eks %s: ClusterName is required", id)
	}
	scope = scope.Child(id)

	nodeSubnets := networking.Private
	if props.InternetAccess {
		nodeSubnets = networking.Public
	}
	if len(props.Network.SubnetIDs(nodeSubnets)) == 0 {
		return nil, fmt.Errorf("eks %s: network has no %s subnets for nodes", scope.Path(), nodeSubnets)
	}

	e := &Eks{parameter: props.ClusterNameParameter}
	if e.parameter == "" {
		e.parameter = ClusterNameParameterName(props.ClusterName)
	}

	var err error
	e.cleanup, err = NewEksCleanup(scope, "Cleanup", EksCleanupProps{
		VpcID:       props.Network.VpcID(),
		ClusterName: props.ClusterName,
	})
	if err != nil {
		return nil, err
	}

	e.cluster, err = NewEksCluster(scope, "Cluster", EksClusterProps{
		ClusterName: props.ClusterName,
		Version:     props.Version,
		Network:     props.Network,
	}, stack.DependsOn(e.cleanup.Handle()))
	if err != nil {
		return nil, err
	}

	instanceType := props.InstanceType
	if instanceType == "" {
		instanceType = defaultNodeInstanceType
	}
	minCapacity := props.MinCapacity
	if minCapacity == 0 {
		minCapacity = defaultMinCapacity
	}
	e.nodegroup, err = NewEksNodegroup(scope, "Nodes", EksNodegroupProps{
		ClusterName:   e.cluster.Name(),
		Subnets:       props.Network.SubnetIDs(nodeSubnets),
		InstanceTypes: []string{instanceType},
		MinSize:       minCapacity,
	})
	if err != nil {
		return nil, err
	}

	if err := e.addLoadBalancerController(scope.Child("LbController"), props); err != nil {
		return nil, err
	}

	for i, chart := range props.Charts {
		chart.ClusterName = e.cluster.Name()
		if _, err := NewEksHelmChart(scope, fmt.Sprintf("Chart%d", i+1), chart, stack.DependsOn(e.controller)); err != nil {
			return nil, err
		}
	}

	if len(props.Network.SubnetIDs(networking.Private)) > 0 {
		if err := props.Network.TagSubnets(scope, networking.Private, InternalElbTag, "1"); err != nil {
			return nil, err
		}
	}

	if _, err := scope.Add("ClusterNameParameter", ssm.Parameter{
		Name:        e.parameter,
		Description: "Name of the " + props.ClusterName + " EKS cluster",
		Type:        "String",
		Value:       e.cluster.Name(),
	}); err != nil {
		return nil, err
	}

	if err := scope.AddOutput("ClusterName", wetwire.Output{
		Description: "EKS cluster name",
		Value:       e.cluster.Name(),
	}); err != nil {
		return nil, err
	}
	return e, nil
}

// addLoadBalancerController grants the controller its permissions through
// EKS Pod Identity and installs the chart with a pre-created service account.
func (e *Eks) addLoadBalancerController(scope *stack.Scope, props EksProps) error {
	namespace := props.LoadBalancerController.Namespace
	if namespace == "" {
		namespace = LoadBalancerControllerNamespace
	}
	version := props.LoadBalancerController.ChartVersion
	if version == "" {
		version = LoadBalancerControllerVersion
	}

	role, err := scope.Add("Role", iam.Role{
		AssumeRolePolicyDocument: NewPolicyDocument(PolicyStatement{
			Effect:    "Allow",
			Principal: ServicePrincipal{"pods.eks.amazonaws.com"},
			Action:    []string{"sts:AssumeRole", "sts:TagSession"},
		}),
		Policies: []iam.Role_Policy{{
			PolicyName:     "LoadBalancerController",
			PolicyDocument: NewPolicyDocument(Allow(loadBalancerControllerActions)),
		}},
	})
	if err != nil {
		return err
	}

	agent, err := scope.Add("PodIdentityAgent", eks.Addon{
		ClusterName:      e.cluster.Name(),
		AddonName:        podIdentityAgentAddon,
		ResolveConflicts: "OVERWRITE",
	}, stack.DependsOn(e.nodegroup.Handle()))
	if err != nil {
		return err
	}

	association, err := scope.Add("PodIdentityAssociation", eks.PodIdentityAssociation{
		ClusterName:    e.cluster.Name(),
		Namespace:      namespace,
		ServiceAccount: LoadBalancerControllerServiceAccount,
		RoleArn:        role.GetAtt("Arn"),
	}, stack.DependsOn(agent))
	if err != nil {
		return err
	}

	account, err := NewKubernetesManifest(scope, "ServiceAccount", KubernetesManifestProps{
		ClusterName: e.cluster.Name(),
		Namespace:   namespace,
		Object: ServiceAccount(LoadBalancerControllerServiceAccount, namespace, map[string]string{
			"app.kubernetes.io/name": LoadBalancerControllerServiceAccount,
		}),
	}, stack.DependsOn(e.nodegroup.Handle()))
	if err != nil {
		return err
	}

	e.controller, err = NewEksHelmChart(scope, "Chart", EksHelmChartProps{
		ClusterName: e.cluster.Name(),
		Chart:       LoadBalancerControllerChart,
		Repository:  LoadBalancerControllerRepository,
		Namespace:   namespace,
		Release:     LoadBalancerControllerChart,
		Version:     version,
		Values: map[string]any{
			"clusterName": e.cluster.Name(),
			"vpcId":       props.Network.VpcID(),
			"region":      scope.Stack().Region(),
			"serviceAccount": map[string]any{
				"create": false,
				"name":   LoadBalancerControllerServiceAccount,
			},
		},
	}, stack.DependsOn(account, association))
	return err
}

func (e *Eks) Cluster() *EksCluster     { return e.cluster }
func (e *Eks) Nodegroup() *EksNodegroup { return e.nodegroup }
func (e *Eks) Cleanup() *EksCleanup     { return e.cleanup }

// LoadBalancerController returns the controller chart resource.
func (e *Eks) LoadBalancerController() stack.Handle { return e.controller }

// ClusterNameParameterName returns the SSM parameter holding the cluster name.
func (e *Eks) ClusterNameParameterName() string { return e.parameter }

var loadBalancerControllerActions = []string{
	"iam:CreateServiceLinkedRole",
	"ec2:DescribeAccountAttributes",
	"ec2:DescribeAddresses",
	"ec2:DescribeAvailabilityZones",
	"ec2:DescribeInternetGateways",
	"ec2:DescribeVpcs",
	"ec2:DescribeVpcPeeringConnections",
	"ec2:DescribeSubnets",
	"ec2:DescribeSecurityGroups",
	"ec2:DescribeInstances",
	"ec2:DescribeNetworkInterfaces",
	"ec2:DescribeTags",
	"ec2:GetCoipPoolUsage",
	"ec2:DescribeCoipPools",
	"ec2:AuthorizeSecurityGroupIngress",
	"ec2:RevokeSecurityGroupIngress",
	"ec2:CreateSecurityGroup",
	"ec2:DeleteSecurityGroup",
	"ec2:CreateTags",
	"ec2:DeleteTags",
	"elasticloadbalancing:DescribeLoadBalancers",
	"elasticloadbalancing:DescribeLoadBalancerAttributes",
	"elasticloadbalancing:DescribeListeners",
	"elasticloadbalancing:DescribeListenerCertificates",
	"elasticloadbalancing:DescribeSSLPolicies",
	"elasticloadbalancing:DescribeRules",
	"elasticloadbalancing:DescribeTargetGroups",
	"elasticloadbalancing:DescribeTargetGroupAttributes",
	"elasticloadbalancing:DescribeTargetHealth",
	"elasticloadbalancing:DescribeTags",
	"elasticloadbalancing:CreateLoadBalancer",
	"elasticloadbalancing:DeleteLoadBalancer",
	"elasticloadbalancing:ModifyLoadBalancerAttributes",
	"elasticloadbalancing:CreateListener",
	"elasticloadbalancing:DeleteListener",
	"elasticloadbalancing:ModifyListener",
	"elasticloadbalancing:CreateRule",
	"elasticloadbalancing:DeleteRule",
	"elasticloadbalancing:ModifyRule",
	"elasticloadbalancing:CreateTargetGroup",
	"elasticloadbalancing:DeleteTargetGroup",
	"elasticloadbalancing:ModifyTargetGroup",
	"elasticloadbalancing:ModifyTargetGroupAttributes",
	"elasticloadbalancing:RegisterTargets",
	"elasticloadbalancing:DeregisterTargets",
	"elasticloadbalancing:AddTags",
	"elasticloadbalancing:RemoveTags",
	"elasticloadbalancing:SetWebAcl",
	"elasticloadbalancing:SetSecurityGroups",
	"elasticloadbalancing:SetIpAddressType",
	"elasticloadbalancing:SetSubnets",
	"elasticloadbalancing:AddListenerCertificates",
	"elasticloadbalancing:RemoveListenerCertificates",
	"acm:ListCertificates",
	"acm:DescribeCertificate",
	"iam:ListServerCertificates",
	"iam:GetServerCertificate",
	"cognito-idp:DescribeUserPoolClient",
	"waf-regional:GetWebACL",
	"waf-regional:GetWebACLForResource",
	"waf-regional:AssociateWebACL",
	"waf-regional:DisassociateWebACL",
	"wafv2:GetWebACL",
	"wafv2:GetWebACLForResource",
	"wafv2:AssociateWebACL",
	"wafv2:DisassociateWebACL",
	"shield:GetSubscriptionState",
	"shield:DescribeProtection",
	"shield:CreateProtection",
	"shield:DeleteProtection",
}
