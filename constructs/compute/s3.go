package compute

import (
	"fmt"
	"strings"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/s3"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

const s3ArnPrefix = "arn:aws:s3:::"

// S3Props configures NewS3. With ExistingBucketArn set the bucket is
// imported and nothing is created.
type S3Props struct {
	BucketName        string
	ExistingBucketArn string
	Versioned         bool
	// RemovalPolicy defaults to Retain.
	RemovalPolicy string
	// Outputs exports the bucket name and ARN.
	Outputs bool
}

// S3 is a bucket created by the stack or imported by ARN.
type S3 struct {
	name any
	arn  any
}

// NewS3 creates a private bucket or imports an existing one.
func NewS3(scope *stack.Scope, id string, props S3Props) (*S3, error) {
	scope = scope.Child(id)

	if props.ExistingBucketArn != "" {
		name, ok := strings.CutPrefix(props.ExistingBucketArn, s3ArnPrefix)
		if !ok || name == "" || strings.Contains(name, "/") {
			return nil, fmt.Errorf("s3 %s: %q is not a bucket ARN", scope.Path(), props.ExistingBucketArn)
		}
		return &S3{name: name, arn: props.ExistingBucketArn}, nil
	}

	bucket := s3.Bucket{
		BucketName: optional(props.BucketName),
		PublicAccessBlockConfiguration: &s3.Bucket_PublicAccessBlockConfiguration{
			BlockPublicAcls:       true,
			BlockPublicPolicy:     true,
			IgnorePublicAcls:      true,
			RestrictPublicBuckets: true,
		},
	}
	if props.Versioned {
		bucket.VersioningConfiguration = &s3.Bucket_VersioningConfiguration{Status: "Enabled"}
	}

	policy := props.RemovalPolicy
	if policy == "" {
		policy = stack.PolicyRetain
	}
	h, err := scope.Add("Bucket", bucket, stack.RemovalPolicy(policy))
	if err != nil {
		return nil, err
	}
	b := &S3{name: h.Ref(), arn: h.GetAtt("Arn")}

	if props.Outputs {
		if err := scope.AddOutput("BucketName", wetwire.Output{Value: b.name}); err != nil {
			return nil, err
		}
		if err := scope.AddOutput("BucketArn", wetwire.Output{Value: b.arn}); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// BucketName is a literal name for imported buckets and a Ref otherwise.
func (b *S3) BucketName() any { return b.name }

func (b *S3) BucketArn() any { return b.arn }

// ObjectsArn matches every object in the bucket.
func (b *S3) ObjectsArn() any {
	if arn, ok := b.arn.(string); ok {
		return arn + "/*"
	}
	return SubWithMap{String: "${Arn}/*", Variables: map[string]any{"Arn": b.arn}}
}
