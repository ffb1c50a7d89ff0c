// Package config loads the YAML file describing the stacks to synthesize.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/lex00/wetwire-aws-constructs-go/cidr"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "wetwire.yaml"

// Environment variables overriding the file.
const (
	EnvRegion  = "WETWIRE_REGION"
	EnvAccount = "WETWIRE_ACCOUNT"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var (
	accountPattern = regexp.MustCompile(`^[0-9]{12}$`)
	namePattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
)

// Config is the root of wetwire.yaml.
type Config struct {
	Name    string            `yaml:"name"`
	Region  string            `yaml:"region,omitempty"`
	Account string            `yaml:"account,omitempty"`
	Tags    map[string]string `yaml:"tags,omitempty"`

	Logging Logging `yaml:"logging"`
	Handler Handler `yaml:"handler"`
	Lookup  Lookup  `yaml:"lookup"`

	Vpc   Vpc   `yaml:"vpc"`
	Eks   Eks   `yaml:"eks"`
	Ecs   Ecs   `yaml:"ecs"`
	Rds   Rds   `yaml:"rds"`
	Redis Redis `yaml:"redis"`
	S3    S3    `yaml:"s3"`
	Alb   Alb   `yaml:"alb"`
}

// Logging configures the CLI logger.
type Logging struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"`
}

// Handler locates the custom-resource handler bundle. When Bucket is empty
// the template takes it as parameters.
type Handler struct {
	Bucket string `yaml:"bucket,omitempty"`
	Key    string `yaml:"key,omitempty"`
}

// Lookup controls synth-time reads of existing infrastructure.
type Lookup struct {
	Enabled   bool   `yaml:"enabled"`
	CacheFile string `yaml:"cacheFile"`
}

// Vpc configures the network.
type Vpc struct {
	Seed           int            `yaml:"seed"`
	CidrBlock      string         `yaml:"cidrBlock,omitempty"`
	AzCount        int            `yaml:"azCount"`
	InternetAccess bool           `yaml:"internetAccess"`
	NatGateways    *int           `yaml:"natGateways,omitempty"`
	VpcID          string         `yaml:"vpcId,omitempty"`
	VpcIDParameter string         `yaml:"vpcIdParameter"`
	ExternalPeers  []ExternalPeer `yaml:"externalPeers,omitempty"`
}

// ExternalPeer is a VPC outside the stack to peer with.
type ExternalPeer struct {
	VpcID               string   `yaml:"vpcId"`
	CidrBlock           string   `yaml:"cidrBlock"`
	PeerOwnerID         string   `yaml:"peerOwnerId,omitempty"`
	PeerRegion          string   `yaml:"peerRegion,omitempty"`
	RouteTableIDs       []string `yaml:"routeTableIds,omitempty"`
	EnableDnsResolution bool     `yaml:"enableDnsResolution,omitempty"`
}

// Eks configures the Kubernetes cluster.
type Eks struct {
	ClusterName    string      `yaml:"clusterName"`
	Version        string      `yaml:"version"`
	InstanceType   string      `yaml:"instanceType"`
	MinCapacity    int         `yaml:"minCapacity"`
	InternetAccess bool        `yaml:"internetAccess"`
	HelmCharts     []HelmChart `yaml:"helmCharts,omitempty"`
}

// HelmChart is an extra chart installed on the cluster.
type HelmChart struct {
	Name       string            `yaml:"name"`
	Chart      string            `yaml:"chart"`
	Repository string            `yaml:"repository"`
	Namespace  string            `yaml:"namespace,omitempty"`
	Version    string            `yaml:"version,omitempty"`
	Values     map[string]string `yaml:"values,omitempty"`
	Set        []string          `yaml:"set,omitempty"`
}

// Ecs configures the container cluster and its services.
type Ecs struct {
	ClusterName string       `yaml:"clusterName"`
	Capacity    *EcsCapacity `yaml:"capacity,omitempty"`
	Services    []EcsService `yaml:"services,omitempty"`
}

// EcsCapacity adds an Auto Scaling group of container instances.
type EcsCapacity struct {
	InstanceType    string `yaml:"instanceType"`
	DesiredCapacity int    `yaml:"desiredCapacity"`
}

// EcsService is one Fargate service.
type EcsService struct {
	ContainerName    string            `yaml:"containerName"`
	ContainerImage   string            `yaml:"containerImage"`
	Cpu              int               `yaml:"cpu"`
	MemoryLimitMiB   int               `yaml:"memoryLimitMiB"`
	DesiredCount     int               `yaml:"desiredCount"`
	ApplicationPort  int               `yaml:"applicationPort"`
	SecurityGroupID  string            `yaml:"securityGroupId,omitempty"`
	Environment      map[string]string `yaml:"environment,omitempty"`
	Command          []string          `yaml:"command,omitempty"`
	PolicyStatements []Statement       `yaml:"policyStatements,omitempty"`

	// Ec2 runs the service on the cluster capacity behind its own ALB.
	Ec2 bool `yaml:"ec2,omitempty"`
}

// Statement is an IAM allow statement granted to a task role.
type Statement struct {
	Actions   []string `yaml:"actions"`
	Resources []string `yaml:"resources,omitempty"`
}

// Rds configures the database instance.
type Rds struct {
	InstanceIdentifier  string `yaml:"instanceIdentifier"`
	Engine              string `yaml:"engine"`
	EngineVersion       string `yaml:"engineVersion,omitempty"`
	DatabaseName        string `yaml:"databaseName"`
	DatabaseUsername    string `yaml:"databaseUsername"`
	InstanceType        string `yaml:"instanceType"`
	Port                int    `yaml:"port,omitempty"`
	StorageSize         int    `yaml:"storageSize"`
	BackupRetentionDays int    `yaml:"backupRetentionDays,omitempty"`
	DbArn               string `yaml:"dbArn,omitempty"`
	Imported            bool   `yaml:"imported,omitempty"`
}

// Redis configures the replication group. VpcID, SubnetIDs and
// SecurityGroupIDs are only read by the standalone redis stack.
type Redis struct {
	DbIdentifier      string   `yaml:"dbIdentifier"`
	InstanceType      string   `yaml:"instanceType,omitempty"`
	VpcID             string   `yaml:"vpcId,omitempty"`
	AvailabilityZones []string `yaml:"availabilityZones,omitempty"`
	SubnetIDs         []string `yaml:"subnetIds,omitempty"`
	SecurityGroupIDs  []string `yaml:"securityGroupIds,omitempty"`
}

// S3 configures the bucket stack.
type S3 struct {
	BucketName        string `yaml:"bucketName,omitempty"`
	ExistingBucketArn string `yaml:"existingBucketArn,omitempty"`
	Versioned         bool   `yaml:"versioned,omitempty"`
}

// Alb configures the load balancer stack.
type Alb struct {
	ApplicationPort int      `yaml:"applicationPort"`
	HealthCheckPath string   `yaml:"healthCheckPath"`
	ListenerPort    int      `yaml:"listenerPort,omitempty"`
	CertificateArns []string `yaml:"certificateArns,omitempty"`
}

// Default returns a config with every default filled in.
func Default() *Config {
	return &Config{
		Name:    "wetwire",
		Logging: Logging{Level: "info", Environment: "development"},
		Lookup:  Lookup{CacheFile: "wetwire.context.yaml"},
		Vpc: Vpc{
			Seed:           1,
			AzCount:        2,
			InternetAccess: true,
			VpcIDParameter: "vpcId",
		},
		Eks: Eks{
			ClusterName:    "eks-cluster",
			Version:        "1.29",
			InstanceType:   "t3.medium",
			MinCapacity:    2,
			InternetAccess: true,
		},
		Ecs: Ecs{ClusterName: "ecs-cluster"},
		Rds: Rds{
			InstanceIdentifier: "database",
			Engine:             "postgres",
			DatabaseName:       "tstesting",
			DatabaseUsername:   "postgres",
			InstanceType:       "db.t3.micro",
			StorageSize:        20,
		},
		Redis: Redis{DbIdentifier: "redis"},
		Alb:   Alb{ApplicationPort: 80, HealthCheckPath: "/"},
	}
}

// Load reads path, applies defaults and environment overrides, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides region and account from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRegion); ok && v != "" {
		c.Region = v
	}
	if v, ok := lookup(EnvAccount); ok && v != "" {
		c.Account = v
	}
}

// VpcCidrBlock returns the configured block, or the block derived from Seed.
func (c *Config) VpcCidrBlock() (string, error) {
	if c.Vpc.CidrBlock != "" {
		return c.Vpc.CidrBlock, nil
	}
	return cidr.Block(c.Vpc.Seed)
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if !namePattern.MatchString(c.Name) {
		add("name %q must start with a letter and contain only letters, digits and dashes", c.Name)
	}
	if c.Account != "" && !accountPattern.MatchString(c.Account) {
		add("account %q must be 12 digits", c.Account)
	}
	if (c.Handler.Bucket == "") != (c.Handler.Key == "") {
		add("handler.bucket and handler.key must be set together")
	}
	if c.Lookup.Enabled && c.Lookup.CacheFile == "" {
		add("lookup.cacheFile is required when lookup is enabled")
	}

	if c.Vpc.AzCount < 1 || c.Vpc.AzCount > 6 {
		add("vpc.azCount %d must be between 1 and 6", c.Vpc.AzCount)
	}
	if c.Vpc.NatGateways != nil && *c.Vpc.NatGateways < 0 {
		add("vpc.natGateways must not be negative")
	}
	block, err := c.VpcCidrBlock()
	if err != nil {
		add("vpc: %v", err)
	}
	for i, p := range c.Vpc.ExternalPeers {
		if p.VpcID == "" {
			add("vpc.externalPeers[%d].vpcId is required", i)
		}
		if block == "" {
			continue
		}
		if err := cidr.CheckPeerable(block, p.CidrBlock); err != nil {
			add("vpc.externalPeers[%d]: %v", i, err)
		}
	}

	if c.Eks.MinCapacity < 1 {
		add("eks.minCapacity must be at least 1")
	}
	for i, chart := range c.Eks.HelmCharts {
		if chart.Chart == "" || chart.Repository == "" {
			add("eks.helmCharts[%d]: chart and repository are required", i)
		}
	}

	if c.Ecs.Capacity != nil && c.Ecs.Capacity.InstanceType == "" {
		add("ecs.capacity.instanceType is required")
	}
	for i, svc := range c.Ecs.Services {
		if svc.Ec2 && c.Ecs.Capacity == nil {
			add("ecs.services[%d]: ec2 services need ecs.capacity", i)
		}
		if svc.ContainerName == "" || svc.ContainerImage == "" {
			add("ecs.services[%d]: containerName and containerImage are required", i)
		}
		if !validPort(svc.ApplicationPort) {
			add("ecs.services[%d].applicationPort %d is not a valid port", i, svc.ApplicationPort)
		}
		if svc.Cpu <= 0 || svc.MemoryLimitMiB <= 0 {
			add("ecs.services[%d]: cpu and memoryLimitMiB must be positive", i)
		}
	}

	if c.Rds.Imported && c.Rds.DbArn == "" {
		add("rds.dbArn is required when rds.imported is set")
	}
	if c.Rds.Port != 0 && !validPort(c.Rds.Port) {
		add("rds.port %d is not a valid port", c.Rds.Port)
	}

	if !validPort(c.Alb.ApplicationPort) {
		add("alb.applicationPort %d is not a valid port", c.Alb.ApplicationPort)
	}
	if c.Alb.ListenerPort != 0 && !validPort(c.Alb.ListenerPort) {
		add("alb.listenerPort %d is not a valid port", c.Alb.ListenerPort)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
