// Package s3 provides typed AWS::S3 resources.
package s3

// Bucket represents AWS::S3::Bucket.
type Bucket struct {
	BucketName                     any                                    `json:"BucketName,omitempty"`
	VersioningConfiguration        *Bucket_VersioningConfiguration        `json:"VersioningConfiguration,omitempty"`
	PublicAccessBlockConfiguration *Bucket_PublicAccessBlockConfiguration `json:"PublicAccessBlockConfiguration,omitempty"`
	Tags                           []any                                  `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Bucket) ResourceType() string { return "AWS::S3::Bucket" }

// Bucket_VersioningConfiguration enables or suspends object versioning.
type Bucket_VersioningConfiguration struct {
	Status any `json:"Status,omitempty"`
}

// Bucket_PublicAccessBlockConfiguration blocks public access to the bucket.
type Bucket_PublicAccessBlockConfiguration struct {
	BlockPublicAcls       any `json:"BlockPublicAcls,omitempty"`
	BlockPublicPolicy     any `json:"BlockPublicPolicy,omitempty"`
	IgnorePublicAcls      any `json:"IgnorePublicAcls,omitempty"`
	RestrictPublicBuckets any `json:"RestrictPublicBuckets,omitempty"`
}
