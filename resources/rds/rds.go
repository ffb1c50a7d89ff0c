// Package rds provides typed AWS::RDS resources.
package rds

// DBInstance represents AWS::RDS::DBInstance.
type DBInstance struct {
	DBInstanceIdentifier     any   `json:"DBInstanceIdentifier,omitempty"`
	DBInstanceClass          any   `json:"DBInstanceClass,omitempty"`
	Engine                   any   `json:"Engine,omitempty"`
	EngineVersion            any   `json:"EngineVersion,omitempty"`
	DBName                   any   `json:"DBName,omitempty"`
	MasterUsername           any   `json:"MasterUsername,omitempty"`
	ManageMasterUserPassword any   `json:"ManageMasterUserPassword,omitempty"`
	AllocatedStorage         any   `json:"AllocatedStorage,omitempty"`
	MaxAllocatedStorage      any   `json:"MaxAllocatedStorage,omitempty"`
	Port                     any   `json:"Port,omitempty"`
	DBSubnetGroupName        any   `json:"DBSubnetGroupName,omitempty"`
	VPCSecurityGroups        []any `json:"VPCSecurityGroups,omitempty"`
	AllowMajorVersionUpgrade any   `json:"AllowMajorVersionUpgrade,omitempty"`
	BackupRetentionPeriod    any   `json:"BackupRetentionPeriod,omitempty"`
	MultiAZ                  any   `json:"MultiAZ,omitempty"`
	PubliclyAccessible       any   `json:"PubliclyAccessible,omitempty"`
	StorageEncrypted         any   `json:"StorageEncrypted,omitempty"`
	DeletionProtection       any   `json:"DeletionProtection,omitempty"`
	Tags                     []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r DBInstance) ResourceType() string { return "AWS::RDS::DBInstance" }

// DBSubnetGroup represents AWS::RDS::DBSubnetGroup.
type DBSubnetGroup struct {
	DBSubnetGroupName        any   `json:"DBSubnetGroupName,omitempty"`
	DBSubnetGroupDescription any   `json:"DBSubnetGroupDescription,omitempty"`
	SubnetIds                []any `json:"SubnetIds,omitempty"`
	Tags                     []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r DBSubnetGroup) ResourceType() string { return "AWS::RDS::DBSubnetGroup" }
