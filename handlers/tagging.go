package handlers

import (
	"context"
	"sort"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"go.uber.org/zap"

	"github.com/lex00/wetwire-aws-constructs-go/internal/logging"
)

// subnetTagging applies Tags to SubnetIds. On update, subnets dropped from
// SubnetIds lose every previous tag and the remaining subnets lose the keys
// dropped from Tags, before the new tags are written. On delete the tag keys
// are removed.
func (r *Router) subnetTagging(ctx context.Context, event cfn.Event) (map[string]interface{}, error) {
	logger := logging.FromContext(ctx)

	subnets, err := stringListProp(event.ResourceProperties, "SubnetIds")
	if err != nil {
		return nil, err
	}
	tags, err := tagsProp(event.ResourceProperties, "Tags")
	if err != nil {
		return nil, err
	}

	switch event.RequestType {
	case cfn.RequestDelete:
		if err := r.deleteTags(ctx, subnets, tagKeys(tags)); err != nil {
			return nil, err
		}
		logger.Info("removed subnet tags", zap.Strings("subnets", subnets), zap.Strings("keys", tagKeys(tags)))
		return nil, nil

	case cfn.RequestUpdate:
		if err := r.untagReplaced(ctx, event.OldResourceProperties, subnets, tags); err != nil {
			return nil, err
		}
	}

	input := &ec2.CreateTagsInput{Resources: aws.StringSlice(subnets)}
	for _, k := range tagKeys(tags) {
		input.Tags = append(input.Tags, &ec2.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	if _, err := r.client.CreateTagsWithContext(ctx, input); err != nil {
		return nil, err
	}
	logger.Info("tagged subnets", zap.Strings("subnets", subnets), zap.Int("tags", len(tags)))
	return nil, nil
}

// untagReplaced removes what the previous properties applied and the new
// ones no longer do. Unreadable previous properties are ignored.
func (r *Router) untagReplaced(ctx context.Context, old map[string]interface{}, subnets []string, tags map[string]string) error {
	oldSubnets, err := stringListProp(old, "SubnetIds")
	if err != nil {
		return nil
	}
	oldTags, err := tagsProp(old, "Tags")
	if err != nil {
		return nil
	}

	current := make(map[string]bool, len(subnets))
	for _, id := range subnets {
		current[id] = true
	}
	var removed, kept []string
	for _, id := range oldSubnets {
		if current[id] {
			kept = append(kept, id)
		} else {
			removed = append(removed, id)
		}
	}

	var dropped []string
	for _, k := range tagKeys(oldTags) {
		if _, ok := tags[k]; !ok {
			dropped = append(dropped, k)
		}
	}

	if err := r.deleteTags(ctx, removed, tagKeys(oldTags)); err != nil {
		return err
	}
	return r.deleteTags(ctx, kept, dropped)
}

func (r *Router) deleteTags(ctx context.Context, resources, keys []string) error {
	if len(resources) == 0 || len(keys) == 0 {
		return nil
	}
	input := &ec2.DeleteTagsInput{Resources: aws.StringSlice(resources)}
	for _, k := range keys {
		input.Tags = append(input.Tags, &ec2.Tag{Key: aws.String(k)})
	}
	_, err := r.client.DeleteTagsWithContext(ctx, input)
	if hasErrorCode(err, "InvalidSubnetID.NotFound") {
		return nil
	}
	return err
}

func tagKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
