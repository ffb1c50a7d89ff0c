// Package db provides the RDS instance and ElastiCache Redis constructs.
package db

import (
	"errors"
	"fmt"
	"strings"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/rds"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// RDS defaults.
const (
	DefaultEngine           = "postgres"
	DefaultDatabaseName     = "tstesting"
	DefaultDatabaseUsername = "postgres"
	DefaultInstanceType     = "db.t3.micro"
	DefaultStorageSize      = 20
)

// ErrNotImported is returned when an imported database has no usable ARN.
var ErrNotImported = errors.New("database ARN has no db: identifier")

// RdsProps configures NewRds.
type RdsProps struct {
	Network          networking.Network
	SecurityGroupIDs []any
	InstanceType     string
	// SubnetType defaults to private subnets.
	SubnetType       networking.SubnetType
	DatabaseName     string
	DatabaseUsername string
	Engine           string
	EngineVersion    string
	// Port defaults to the engine's standard port.
	Port                int
	InstanceIdentifier  string
	StorageSize         int
	BackupRetentionDays int
	// DbArn with IsImported references an existing instance; nothing is created.
	DbArn      string
	IsImported bool
}

// Rds is a database instance with a Secrets Manager managed master password.
type Rds struct {
	instance   stack.Handle
	identifier any
	port       int
	name       string
	username   string
	imported   bool
}

// SecretArnOutputID names the output holding the master secret ARN.
func SecretArnOutputID(instanceIdentifier string) string {
	return instanceIdentifier + "-secret-arn"
}

// NewRds creates a database instance and its subnet group, or references
// an existing instance when IsImported and DbArn are set.
func NewRds(scope *stack.Scope, id string, props RdsProps) (*Rds, error) {
	scope = scope.Child(id)

	r := &Rds{
		name:     props.DatabaseName,
		username: props.DatabaseUsername,
		port:     props.Port,
	}
	if r.name == "" {
		r.name = DefaultDatabaseName
	}
	if r.username == "" {
		r.username = DefaultDatabaseUsername
	}
	engine := props.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	if r.port == 0 {
		r.port = defaultPort(engine)
	}

	if props.IsImported && props.DbArn != "" {
		_, identifier, ok := strings.Cut(props.DbArn, "db:")
		if !ok || identifier == "" {
			return nil, fmt.Errorf("rds %s: %w: %s", scope.Path(), ErrNotImported, props.DbArn)
		}
		r.identifier = identifier
		r.imported = true
		return r, nil
	}

	if err := props.validate(); err != nil {
		return nil, fmt.Errorf("rds %s: %w", scope.Path(), err)
	}

	subnetType := props.SubnetType
	if subnetType == "" {
		subnetType = networking.Private
	}
	subnets := props.Network.SubnetIDs(subnetType)
	if len(subnets) < 2 {
		return nil, fmt.Errorf("rds %s: a subnet group needs two %s subnets, network has %d", scope.Path(), subnetType, len(subnets))
	}

	subnetGroup, err := scope.Add("SubnetGroup", rds.DBSubnetGroup{
		DBSubnetGroupDescription: "Subnets for " + props.InstanceIdentifier,
		SubnetIds:                subnets,
	})
	if err != nil {
		return nil, err
	}

	instanceType := props.InstanceType
	if instanceType == "" {
		instanceType = DefaultInstanceType
	}
	storage := props.StorageSize
	if storage == 0 {
		storage = DefaultStorageSize
	}

	instance := rds.DBInstance{
		DBInstanceIdentifier:     props.InstanceIdentifier,
		DBInstanceClass:          instanceType,
		Engine:                   engine,
		EngineVersion:            optional(props.EngineVersion),
		DBName:                   r.name,
		MasterUsername:           r.username,
		ManageMasterUserPassword: true,
		AllocatedStorage:         fmt.Sprint(storage),
		MaxAllocatedStorage:      storage * 2,
		Port:                     fmt.Sprint(r.port),
		DBSubnetGroupName:        subnetGroup.Ref(),
		VPCSecurityGroups:        props.SecurityGroupIDs,
		AllowMajorVersionUpgrade: true,
		StorageEncrypted:         true,
		PubliclyAccessible:       false,
	}
	if props.BackupRetentionDays > 0 {
		instance.BackupRetentionPeriod = props.BackupRetentionDays
	}

	r.instance, err = scope.Add("Instance", instance, stack.RemovalPolicy(stack.PolicySnapshot))
	if err != nil {
		return nil, err
	}
	r.identifier = r.instance.Ref()

	outputs := []struct {
		id string
		o  wetwire.Output
	}{
		{"DbSecret", wetwire.Output{Value: SubWithMap{
			String:    props.InstanceIdentifier + "-db-secret:${Secret}",
			Variables: map[string]any{"Secret": r.SecretArn()},
		}}},
		{"DbEndpointPort", wetwire.Output{Value: SubWithMap{
			String: "${Address}:${Port}",
			Variables: map[string]any{
				"Address": r.Endpoint(),
				"Port":    r.Port(),
			},
		}}},
		{"DbName", wetwire.Output{Value: r.name}},
		{SecretArnOutputID(props.InstanceIdentifier), wetwire.Output{
			Description: SecretArnOutputID(props.InstanceIdentifier),
			Value:       r.SecretArn(),
		}},
	}
	for _, out := range outputs {
		if err := scope.AddOutput(out.id, out.o); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (p RdsProps) validate() error {
	var errs []error
	if p.Network == nil {
		errs = append(errs, errors.New("Network is required"))
	}
	if p.InstanceIdentifier == "" {
		errs = append(errs, errors.New("InstanceIdentifier is required"))
	}
	if p.StorageSize < 0 {
		errs = append(errs, fmt.Errorf("negative storage size %d", p.StorageSize))
	}
	if p.Port < 0 || p.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", p.Port))
	}
	if p.BackupRetentionDays < 0 || p.BackupRetentionDays > 35 {
		errs = append(errs, fmt.Errorf("backup retention %d is outside 0-35 days", p.BackupRetentionDays))
	}
	return errors.Join(errs...)
}

func defaultPort(engine string) int {
	switch {
	case strings.HasPrefix(engine, "mysql"), strings.HasPrefix(engine, "mariadb"), strings.HasPrefix(engine, "aurora-mysql"):
		return 3306
	case strings.HasPrefix(engine, "sqlserver"):
		return 1433
	case strings.HasPrefix(engine, "oracle"):
		return 1521
	default:
		return 5432
	}
}

// Identifier is the instance identifier.
func (r *Rds) Identifier() any { return r.identifier }

// Endpoint is the instance address, or nil for an imported instance.
func (r *Rds) Endpoint() any {
	if r.imported {
		return nil
	}
	return r.instance.GetAtt("Endpoint.Address")
}

// Port is the endpoint port. Imported instances report the configured port.
func (r *Rds) Port() any {
	if r.imported {
		return fmt.Sprint(r.port)
	}
	return r.instance.GetAtt("Endpoint.Port")
}

// SecretArn is the master user secret, or nil for an imported instance.
func (r *Rds) SecretArn() any {
	if r.imported {
		return nil
	}
	return r.instance.GetAtt("MasterUserSecret.SecretArn")
}

func (r *Rds) DatabaseName() string     { return r.name }
func (r *Rds) DatabaseUsername() string { return r.username }
func (r *Rds) Imported() bool           { return r.imported }
func (r *Rds) Handle() stack.Handle     { return r.instance }

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
