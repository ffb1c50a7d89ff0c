// Package elasticache provides typed AWS::ElastiCache resources.
package elasticache

// ReplicationGroup represents AWS::ElastiCache::ReplicationGroup.
type ReplicationGroup struct {
	ReplicationGroupId          any   `json:"ReplicationGroupId,omitempty"`
	ReplicationGroupDescription any   `json:"ReplicationGroupDescription,omitempty"`
	Engine                      any   `json:"Engine,omitempty"`
	EngineVersion               any   `json:"EngineVersion,omitempty"`
	CacheNodeType               any   `json:"CacheNodeType,omitempty"`
	NumNodeGroups               any   `json:"NumNodeGroups,omitempty"`
	ReplicasPerNodeGroup        any   `json:"ReplicasPerNodeGroup,omitempty"`
	AutomaticFailoverEnabled    any   `json:"AutomaticFailoverEnabled,omitempty"`
	MultiAZEnabled              any   `json:"MultiAZEnabled,omitempty"`
	AtRestEncryptionEnabled     any   `json:"AtRestEncryptionEnabled,omitempty"`
	TransitEncryptionEnabled    any   `json:"TransitEncryptionEnabled,omitempty"`
	AuthToken                   any   `json:"AuthToken,omitempty"`
	Port                        any   `json:"Port,omitempty"`
	CacheSubnetGroupName        any   `json:"CacheSubnetGroupName,omitempty"`
	SecurityGroupIds            []any `json:"SecurityGroupIds,omitempty"`
	Tags                        []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r ReplicationGroup) ResourceType() string { return "AWS::ElastiCache::ReplicationGroup" }

// SubnetGroup represents AWS::ElastiCache::SubnetGroup.
type SubnetGroup struct {
	CacheSubnetGroupName any   `json:"CacheSubnetGroupName,omitempty"`
	Description          any   `json:"Description,omitempty"`
	SubnetIds            []any `json:"SubnetIds,omitempty"`
	Tags                 []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r SubnetGroup) ResourceType() string { return "AWS::ElastiCache::SubnetGroup" }
