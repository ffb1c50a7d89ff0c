package handlers

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"go.uber.org/zap"

	"github.com/lex00/wetwire-aws-constructs-go/internal/logging"
)

// Tags the VPC CNI and the load balancer controller put on what they create.
const (
	cniClusterTag    = "cluster.k8s.amazonaws.com/name"
	clusterTagPrefix = "kubernetes.io/cluster/"
	elbClusterTag    = "elbv2.k8s.aws/cluster"

	eksInterfacePrefix = "Amazon EKS "
)

// eksCleanup removes network interfaces and security groups that an EKS
// cluster leaves behind in its VPC. Without it the VPC delete fails with
// DependencyViolation. Create and update do nothing.
func (r *Router) eksCleanup(ctx context.Context, event cfn.Event) (map[string]interface{}, error) {
	vpcID, err := stringProp(event.ResourceProperties, "VpcId")
	if err != nil {
		return nil, err
	}
	cluster, err := stringProp(event.ResourceProperties, "ClusterName")
	if err != nil {
		return nil, err
	}
	if event.RequestType != cfn.RequestDelete {
		return map[string]interface{}{"Response": "noop"}, nil
	}

	enis, err := r.deleteClusterInterfaces(ctx, vpcID, cluster)
	if err != nil {
		return nil, err
	}
	groups, err := r.deleteClusterSecurityGroups(ctx, vpcID, cluster)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"Response": fmt.Sprintf("deleted %d network interfaces and %d security groups", enis, groups),
	}, nil
}

func (r *Router) deleteClusterInterfaces(ctx context.Context, vpcID, cluster string) (int, error) {
	logger := logging.FromContext(ctx)
	input := &ec2.DescribeNetworkInterfacesInput{
		Filters: []*ec2.Filter{
			{Name: aws.String("vpc-id"), Values: aws.StringSlice([]string{vpcID})},
			{Name: aws.String("status"), Values: aws.StringSlice([]string{ec2.NetworkInterfaceStatusAvailable})},
		},
	}

	deleted := 0
	for {
		out, err := r.client.DescribeNetworkInterfacesWithContext(ctx, input)
		if err != nil {
			return deleted, fmt.Errorf("describing network interfaces: %w", err)
		}
		for _, eni := range out.NetworkInterfaces {
			if !ownedInterface(eni, cluster) {
				continue
			}
			id := aws.StringValue(eni.NetworkInterfaceId)
			_, err := r.client.DeleteNetworkInterfaceWithContext(ctx, &ec2.DeleteNetworkInterfaceInput{
				NetworkInterfaceId: eni.NetworkInterfaceId,
			})
			switch {
			case hasErrorCode(err, "InvalidNetworkInterfaceID.NotFound"):
			case err != nil:
				return deleted, fmt.Errorf("deleting network interface %s: %w", id, err)
			default:
				deleted++
				logger.Info("deleted network interface", zap.String("eni", id))
			}
		}
		if aws.StringValue(out.NextToken) == "" {
			return deleted, nil
		}
		input.NextToken = out.NextToken
	}
}

// ownedInterface matches ENIs the VPC CNI tagged for the cluster and the
// control plane ENIs EKS describes as "Amazon EKS <cluster>".
func ownedInterface(eni *ec2.NetworkInterface, cluster string) bool {
	for _, tag := range eni.TagSet {
		if aws.StringValue(tag.Key) == cniClusterTag && aws.StringValue(tag.Value) == cluster {
			return true
		}
	}
	return aws.StringValue(eni.Description) == eksInterfacePrefix+cluster
}

func (r *Router) deleteClusterSecurityGroups(ctx context.Context, vpcID, cluster string) (int, error) {
	logger := logging.FromContext(ctx)

	seen := make(map[string]bool)
	var groups []*ec2.SecurityGroup
	for _, filter := range []*ec2.Filter{
		{Name: aws.String("tag-key"), Values: aws.StringSlice([]string{clusterTagPrefix + cluster})},
		{Name: aws.String("tag:" + elbClusterTag), Values: aws.StringSlice([]string{cluster})},
	} {
		out, err := r.client.DescribeSecurityGroupsWithContext(ctx, &ec2.DescribeSecurityGroupsInput{
			Filters: []*ec2.Filter{
				{Name: aws.String("vpc-id"), Values: aws.StringSlice([]string{vpcID})},
				filter,
			},
		})
		if err != nil {
			return 0, fmt.Errorf("describing security groups: %w", err)
		}
		for _, g := range out.SecurityGroups {
			id := aws.StringValue(g.GroupId)
			if seen[id] || aws.StringValue(g.GroupName) == "default" {
				continue
			}
			seen[id] = true
			groups = append(groups, g)
		}
	}

	deleted := 0
	for _, g := range groups {
		id := aws.StringValue(g.GroupId)
		_, err := r.client.DeleteSecurityGroupWithContext(ctx, &ec2.DeleteSecurityGroupInput{GroupId: g.GroupId})
		switch {
		case hasErrorCode(err, "InvalidGroup.NotFound"):
		case hasErrorCode(err, "DependencyViolation"):
			// still attached to something CloudFormation deletes later
			logger.Warn("security group still in use", zap.String("group", id))
		case err != nil:
			return deleted, fmt.Errorf("deleting security group %s: %w", id, err)
		default:
			deleted++
			logger.Info("deleted security group", zap.String("group", id))
		}
	}
	return deleted, nil
}
