package db

import (
	"fmt"
	"strings"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/elasticache"
	"github.com/lex00/wetwire-aws-constructs-go/resources/secretsmanager"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

const (
	// RedisPort is the port the replication group listens on.
	RedisPort = 6379

	defaultCacheNodeType = "cache.t4g.micro"
	// characters Redis AUTH tokens may not contain
	authTokenExcludedCharacters = "/\"@%*()[]{}~|+?,'\\_=`;:"
)

// RedisProps configures NewRedis.
type RedisProps struct {
	Network networking.Network
	// SubnetIDs defaults to the isolated subnets, then the private ones.
	SubnetIDs []any
	// SecurityGroupIDs are admitted on the Redis port.
	SecurityGroupIDs []any
	// InstanceType is a node type with or without the cache. prefix.
	InstanceType string
	DbIdentifier string
	// PrimaryVpcCidrBlock is admitted on the Redis port, for peered VPCs.
	PrimaryVpcCidrBlock string
}

// Redis is an encrypted multi-AZ Redis replication group with an AUTH token
// kept in Secrets Manager.
type Redis struct {
	group         stack.Handle
	secret        stack.Handle
	securityGroup *networking.SecurityGroups
}

// NewRedis creates the security group, subnet group, auth token secret and
// replication group.
func NewRedis(scope *stack.Scope, id string, props RedisProps) (*Redis, error) {
	if props.Network == nil {
		return nil, fmt.Errorf("redis %s: Network is required", id)
	}
	if props.DbIdentifier == "" {
		return nil, fmt.Errorf("redis %s: DbIdentifier is required", id)
	}
	scope = scope.Child(id)

	subnets := props.SubnetIDs
	if len(subnets) == 0 {
		subnets = props.Network.SubnetIDs(networking.Isolated)
	}
	if len(subnets) == 0 {
		subnets = props.Network.SubnetIDs(networking.Private)
	}
	if len(subnets) < 2 {
		return nil, fmt.Errorf("redis %s: multi-AZ needs at least two subnets, got %d", scope.Path(), len(subnets))
	}

	var rules []networking.Rule
	for i, sg := range props.SecurityGroupIDs {
		rules = append(rules, networking.Rule{
			Name:                fmt.Sprintf("Redis from group %d", i+1),
			PeerSecurityGroupID: sg,
			Port:                RedisPort,
		})
	}
	if props.PrimaryVpcCidrBlock != "" {
		rules = append(rules, networking.Rule{
			Name: "Redis from primary VPC",
			Peer: props.PrimaryVpcCidrBlock,
			Port: RedisPort,
		})
	}

	r := &Redis{}
	var err error
	r.securityGroup, err = networking.NewSecurityGroups(scope, "SecurityGroup", networking.SecurityGroupsProps{
		Network:     props.Network,
		Description: "Redis " + props.DbIdentifier,
		Rules:       rules,
	})
	if err != nil {
		return nil, err
	}

	subnetGroup, err := scope.Add("SubnetGroup", elasticache.SubnetGroup{
		Description: "isolated subnet group",
		SubnetIds:   subnets,
	})
	if err != nil {
		return nil, err
	}

	r.secret, err = scope.Add("AuthToken", secretsmanager.Secret{
		Description: "AUTH token for " + props.DbIdentifier,
		GenerateSecretString: &secretsmanager.Secret_GenerateSecretString{
			IncludeSpace:      false,
			ExcludeCharacters: authTokenExcludedCharacters,
		},
	})
	if err != nil {
		return nil, err
	}

	r.group, err = scope.Add("ReplicationGroup", elasticache.ReplicationGroup{
		ReplicationGroupId:          props.DbIdentifier,
		ReplicationGroupDescription: "redis cluster",
		Engine:                      "redis",
		CacheNodeType:               cacheNodeType(props.InstanceType),
		NumNodeGroups:               1,
		ReplicasPerNodeGroup:        1,
		AutomaticFailoverEnabled:    true,
		MultiAZEnabled:              true,
		AtRestEncryptionEnabled:     true,
		TransitEncryptionEnabled:    true,
		AuthToken: SubWithMap{
			String:    "{{resolve:secretsmanager:${Secret}:SecretString}}",
			Variables: map[string]any{"Secret": r.secret.Ref()},
		},
		Port:                 RedisPort,
		CacheSubnetGroupName: subnetGroup.Ref(),
		SecurityGroupIds:     []any{r.securityGroup.GroupID()},
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func cacheNodeType(instanceType string) string {
	switch {
	case instanceType == "":
		return defaultCacheNodeType
	case strings.HasPrefix(instanceType, "cache."):
		return instanceType
	default:
		return "cache." + instanceType
	}
}

func (r *Redis) Endpoint() GetAtt     { return r.group.GetAtt("PrimaryEndPoint.Address") }
func (r *Redis) Port() GetAtt         { return r.group.GetAtt("PrimaryEndPoint.Port") }
func (r *Redis) Handle() stack.Handle { return r.group }

// AuthTokenSecretArn is the ARN of the secret holding the AUTH token.
func (r *Redis) AuthTokenSecretArn() Ref { return r.secret.Ref() }

// SecurityGroupID is the group attached to the replication group.
func (r *Redis) SecurityGroupID() GetAtt { return r.securityGroup.GroupID() }
