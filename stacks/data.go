package stacks

import (
	"errors"
	"fmt"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/compute"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/db"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	"github.com/lex00/wetwire-aws-constructs-go/internal/config"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// Redis creates a replication group in an existing VPC. The VPC, subnets
// and admitted security groups come from the redis config section, or from
// a lookup of vpc.vpcId when subnets are not listed.
func Redis(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	var (
		network networking.Network
		subnets []any
		err     error
	)
	switch {
	case len(cfg.Redis.SubnetIDs) > 0:
		if cfg.Redis.VpcID == "" {
			return nil, errors.New("redis: redis.vpcId is required with redis.subnetIds")
		}
		network, err = networking.ImportVpc(networking.VpcAttributes{
			VpcID:             cfg.Redis.VpcID,
			AvailabilityZones: cfg.Redis.AvailabilityZones,
		})
		if err != nil {
			return nil, err
		}
		for _, id := range cfg.Redis.SubnetIDs {
			subnets = append(subnets, id)
		}
	case deps.Lookup != nil:
		network, err = existingVpc(cfg, deps)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("redis: set redis.vpcId and redis.subnetIds, or %w", ErrLookupDisabled)
	}

	s, err := newStack(cfg, "redis", "Redis replication group "+cfg.Redis.DbIdentifier, deps)
	if err != nil {
		return nil, err
	}

	groups := make([]any, 0, len(cfg.Redis.SecurityGroupIDs))
	for _, id := range cfg.Redis.SecurityGroupIDs {
		groups = append(groups, id)
	}
	if _, err := db.NewRedis(s.Root(), "Redis", db.RedisProps{
		Network:          network,
		SubnetIDs:        subnets,
		SecurityGroupIDs: groups,
		InstanceType:     cfg.Redis.InstanceType,
		DbIdentifier:     cfg.Redis.DbIdentifier,
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// S3 creates a bucket, or exports an existing one, with name and ARN
// outputs.
func S3(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	s, err := newStack(cfg, "s3", "S3 bucket", deps)
	if err != nil {
		return nil, err
	}
	if _, err := compute.NewS3(s.Root(), "Bucket", compute.S3Props{
		BucketName:        cfg.S3.BucketName,
		ExistingBucketArn: cfg.S3.ExistingBucketArn,
		Versioned:         cfg.S3.Versioned,
		Outputs:           true,
	}); err != nil {
		return nil, err
	}
	return s, nil
}
