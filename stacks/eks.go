package stacks

import (
	"github.com/lex00/wetwire-aws-constructs-go/constructs/compute"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/db"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	"github.com/lex00/wetwire-aws-constructs-go/internal/config"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// Chart installed by eks-rds when the config names none.
const (
	exampleChart      = "hello-world"
	exampleRepository = "https://helm.github.io/examples"
)

// Eks creates a cluster in the VPC published by the vpc stack.
func Eks(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	network, err := existingVpc(cfg, deps)
	if err != nil {
		return nil, err
	}
	s, err := newStack(cfg, "eks", "EKS cluster "+cfg.Eks.ClusterName, deps)
	if err != nil {
		return nil, err
	}
	if _, err := compute.NewEks(s.Root(), "Eks", eksProps(cfg, network, nil)); err != nil {
		return nil, err
	}
	return s, nil
}

// EksRds creates a VPC, a Postgres instance and a cluster whose charts
// receive the database coordinates as values.
func EksRds(cfg *config.Config, deps Deps) (*stack.Stack, error) {
	s, err := newStack(cfg, "eks-rds", "EKS cluster with a Postgres database", deps)
	if err != nil {
		return nil, err
	}
	root := s.Root()

	vpc, err := newVpc(root, "Vpc", cfg)
	if err != nil {
		return nil, err
	}

	common, err := networking.NewSecurityGroups(root, "Common", networking.SecurityGroupsProps{
		Network:     vpc,
		Name:        cfg.Name + "-common",
		Description: "Web and database access",
		Rules: []networking.Rule{
			{Name: "HTTP", Peer: networking.AnyIPv4, Port: 80},
			{Name: "HTTPS", Peer: networking.AnyIPv4, Port: 443},
			{Name: "Postgres", Peer: vpc.Cidr(), Port: 5432},
		},
	})
	if err != nil {
		return nil, err
	}

	database, err := db.NewRds(root, "Database", rdsProps(cfg, vpc, common.GroupID()))
	if err != nil {
		return nil, err
	}

	values := map[string]any{
		"DB_HOST":       database.Endpoint(),
		"DB_PORT":       database.Port(),
		"DB_SECRET_ARN": database.SecretArn(),
		"DB_NAME":       database.DatabaseName(),
		"DB_USERNAME":   database.DatabaseUsername(),
	}
	_, err = compute.NewEks(root, "Eks", eksProps(cfg, vpc, values))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// eksProps maps cfg.Eks. extraValues are merged into every chart's values;
// with extraValues and no configured chart the example chart is installed.
func eksProps(cfg *config.Config, network networking.Network, extraValues map[string]any) compute.EksProps {
	props := compute.EksProps{
		Network:        network,
		ClusterName:    cfg.Eks.ClusterName,
		Version:        cfg.Eks.Version,
		InternetAccess: cfg.Eks.InternetAccess,
		InstanceType:   cfg.Eks.InstanceType,
		MinCapacity:    cfg.Eks.MinCapacity,
	}

	charts := cfg.Eks.HelmCharts
	if len(charts) == 0 && extraValues != nil {
		charts = []config.HelmChart{{Name: exampleChart, Chart: exampleChart, Repository: exampleRepository}}
	}
	for _, c := range charts {
		values := make(map[string]any, len(c.Values)+len(extraValues))
		for k, v := range extraValues {
			values[k] = v
		}
		for k, v := range c.Values {
			values[k] = v
		}
		props.Charts = append(props.Charts, compute.EksHelmChartProps{
			Chart:           c.Chart,
			Repository:      c.Repository,
			Namespace:       c.Namespace,
			CreateNamespace: c.Namespace != "" && c.Namespace != "default",
			Release:         c.Name,
			Version:         c.Version,
			Values:          values,
			Set:             c.Set,
		})
	}
	return props
}

func rdsProps(cfg *config.Config, network networking.Network, securityGroups ...any) db.RdsProps {
	return db.RdsProps{
		Network:             network,
		SecurityGroupIDs:    securityGroups,
		InstanceType:        cfg.Rds.InstanceType,
		DatabaseName:        cfg.Rds.DatabaseName,
		DatabaseUsername:    cfg.Rds.DatabaseUsername,
		Engine:              cfg.Rds.Engine,
		EngineVersion:       cfg.Rds.EngineVersion,
		Port:                cfg.Rds.Port,
		InstanceIdentifier:  cfg.Rds.InstanceIdentifier,
		StorageSize:         cfg.Rds.StorageSize,
		BackupRetentionDays: cfg.Rds.BackupRetentionDays,
		DbArn:               cfg.Rds.DbArn,
		IsImported:          cfg.Rds.Imported,
	}
}
