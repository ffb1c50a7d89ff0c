package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
	"github.com/lex00/wetwire-aws-constructs-go/resources/iam"
	"github.com/lex00/wetwire-aws-constructs-go/resources/lambda"
)

func TestBuilder_Build_SimpleResource(t *testing.T) {
	builder := NewBuilder("network")
	require.NoError(t, builder.AddResource(Entry{
		LogicalID: "MainVpc",
		Construct: "Main",
		Resource:  ec2.VPC{CidrBlock: "10.1.0.0/16"},
	}))

	template, nodes, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "2010-09-09", template.AWSTemplateFormatVersion)
	assert.Equal(t, "network", template.Description)
	assert.Len(t, template.Resources, 1)

	vpc := template.Resources["MainVpc"]
	assert.Equal(t, "AWS::EC2::VPC", vpc.Type)
	assert.Equal(t, "10.1.0.0/16", vpc.Properties["CidrBlock"])

	require.Len(t, nodes, 1)
	assert.Equal(t, "Main", nodes[0].Construct)
}

func TestBuilder_Build_WithDependencies(t *testing.T) {
	builder := NewBuilder("")
	require.NoError(t, builder.AddResource(Entry{
		LogicalID: "HandlerFunction",
		Resource: lambda.Function{
			Role:    GetAtt{LogicalName: "HandlerRole", Attribute: "Arn"},
			Handler: "bootstrap",
		},
		DependsOn: []string{"HandlerPolicy"},
	}))
	require.NoError(t, builder.AddResource(Entry{
		LogicalID: "HandlerRole",
		Resource:  iam.Role{AssumeRolePolicyDocument: AssumeRolePolicy("lambda.amazonaws.com")},
	}))
	require.NoError(t, builder.AddResource(Entry{
		LogicalID: "HandlerPolicy",
		Resource: iam.Policy{
			PolicyName: "handler",
			Roles:      Any(Ref{LogicalName: "HandlerRole"}),
		},
	}))

	template, nodes, err := builder.Build()
	require.NoError(t, err)

	order := make([]string, len(nodes))
	for i, n := range nodes {
		order[i] = n.LogicalID
	}
	assert.Equal(t, []string{"HandlerRole", "HandlerPolicy", "HandlerFunction"}, order)

	fn := template.Resources["HandlerFunction"]
	assert.Equal(t, []string{"HandlerPolicy"}, fn.DependsOn)
	assert.Equal(t, []string{"HandlerPolicy", "HandlerRole"}, nodes[2].Dependencies)
	assert.Equal(t, []string{"HandlerRole"}, nodes[2].AttrDependencies)
}

func TestBuilder_Build_UndefinedReference(t *testing.T) {
	builder := NewBuilder("")
	require.NoError(t, builder.AddResource(Entry{
		LogicalID: "PublicSubnet",
		Resource:  ec2.Subnet{VpcId: Ref{LogicalName: "MissingVpc"}},
	}))

	_, _, err := builder.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined resource MissingVpc")
}

func TestBuilder_Build_ParameterReference(t *testing.T) {
	builder := NewBuilder("")
	require.NoError(t, builder.AddParameter("HandlerBucket", wetwire.Parameter{Description: "code bucket"}))
	require.NoError(t, builder.AddResource(Entry{
		LogicalID: "HandlerFunction",
		Resource: lambda.Function{
			Code: &lambda.Function_Code{S3Bucket: Ref{LogicalName: "HandlerBucket"}, S3Key: "handler.zip"},
		},
	}))

	template, nodes, err := builder.Build()
	require.NoError(t, err)

	assert.Equal(t, "String", template.Parameters["HandlerBucket"].Type)
	assert.Empty(t, nodes[0].Dependencies)
}

func TestBuilder_DuplicateLogicalID(t *testing.T) {
	builder := NewBuilder("")
	require.NoError(t, builder.AddResource(Entry{LogicalID: "MainVpc", Resource: ec2.VPC{}}))

	err := builder.AddResource(Entry{LogicalID: "MainVpc", Resource: ec2.VPC{}})
	require.Error(t, err)

	err = builder.AddParameter("MainVpc", wetwire.Parameter{})
	require.Error(t, err)
}

func TestBuilder_Tags(t *testing.T) {
	builder := NewBuilder("")
	builder.SetTag("project", "constructs")
	builder.SetTag("Name", "ignored")
	require.NoError(t, builder.AddResource(Entry{
		LogicalID: "MainVpc",
		Resource: ec2.VPC{
			CidrBlock: "10.0.0.0/16",
			Tags:      Tags(map[string]any{"Name": "main"}),
		},
	}))
	require.NoError(t, builder.AddResource(Entry{
		LogicalID: "Attachment",
		Resource:  ec2.VPCGatewayAttachment{VpcId: "vpc-123", InternetGatewayId: "igw-123"},
	}))

	template, _, err := builder.Build()
	require.NoError(t, err)

	tags := template.Resources["MainVpc"].Properties["Tags"].([]any)
	assert.Equal(t, []any{
		map[string]any{"Key": "Name", "Value": "main"},
		map[string]any{"Key": "project", "Value": "constructs"},
	}, tags)
	assert.NotContains(t, template.Resources["Attachment"].Properties, "Tags")
}

func TestBuilder_Build_Outputs(t *testing.T) {
	builder := NewBuilder("")
	require.NoError(t, builder.AddResource(Entry{LogicalID: "MainVpc", Resource: ec2.VPC{CidrBlock: "10.0.0.0/16"}}))
	require.NoError(t, builder.AddOutput("VpcId", wetwire.Output{
		Value:  Ref{LogicalName: "MainVpc"},
		Export: &wetwire.Export{Name: "network-vpc"},
	}))

	template, _, err := builder.Build()
	require.NoError(t, err)

	out := template.Outputs["VpcId"]
	assert.Equal(t, map[string]any{"Ref": "MainVpc"}, out.Value)
	assert.Equal(t, "network-vpc", out.Export.Name)

	assert.Error(t, builder.AddOutput("VpcId", wetwire.Output{Value: "x"}))
}

func TestBuilder_DetectCycle(t *testing.T) {
	builder := NewBuilder("")
	require.NoError(t, builder.AddResource(Entry{LogicalID: "A", Construct: "a", Resource: ec2.RouteTable{VpcId: Ref{LogicalName: "B"}}}))
	require.NoError(t, builder.AddResource(Entry{LogicalID: "B", Construct: "b", Resource: ec2.RouteTable{VpcId: Ref{LogicalName: "C"}}}))
	require.NoError(t, builder.AddResource(Entry{LogicalID: "C", Construct: "c", Resource: ec2.RouteTable{VpcId: Ref{LogicalName: "A"}}}))

	_, _, err := builder.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestToJSON(t *testing.T) {
	template := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]wetwire.ResourceDef{
			"MainVpc": {
				Type:       "AWS::EC2::VPC",
				Properties: map[string]any{"CidrBlock": "10.0.0.0/16"},
			},
		},
	}

	data, err := ToJSON(template)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	resources := parsed["Resources"].(map[string]any)
	vpc := resources["MainVpc"].(map[string]any)
	assert.Equal(t, "AWS::EC2::VPC", vpc["Type"])
}

func TestToYAML(t *testing.T) {
	template := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]wetwire.ResourceDef{
			"MainVpc": {Type: "AWS::EC2::VPC"},
		},
	}

	data, err := ToYAML(template)
	require.NoError(t, err)

	assert.Contains(t, string(data), "AWSTemplateFormatVersion")
	assert.Contains(t, string(data), "AWS::EC2::VPC")
}
