package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/cloudformation"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
)

type testRule struct {
	Port any `json:"FromPort,omitempty"`
}

type testGroup struct {
	GroupName   any               `json:"GroupName,omitempty"`
	Rules       []testRule        `json:"SecurityGroupIngress,omitempty"`
	Egress      *testRule         `json:"Egress,omitempty"`
	Labels      map[string]string `json:"Labels,omitempty"`
	Internal    string            `json:"-"`
	MapPublicIp any               `json:"MapPublicIpOnLaunch,omitempty"`
	unexported  string
}

func TestResource_SimpleStruct(t *testing.T) {
	props, err := Resource(testGroup{GroupName: "alb"})
	require.NoError(t, err)

	assert.Equal(t, "alb", props["GroupName"])
	assert.NotContains(t, props, "SecurityGroupIngress")
	assert.NotContains(t, props, "Egress")
}

func TestResource_SkipsIgnoredAndUnexported(t *testing.T) {
	props, err := Resource(testGroup{GroupName: "alb", Internal: "x", unexported: "y"})
	require.NoError(t, err)

	assert.Len(t, props, 1)
}

func TestResource_ExplicitFalseIsKept(t *testing.T) {
	props, err := Resource(testGroup{MapPublicIp: false})
	require.NoError(t, err)

	assert.Equal(t, false, props["MapPublicIpOnLaunch"])
}

func TestResource_WithSliceAndMap(t *testing.T) {
	props, err := Resource(testGroup{
		Rules:  []testRule{{Port: 443}, {Port: 80}},
		Labels: map[string]string{"role": "ingress"},
	})
	require.NoError(t, err)

	rules := props["SecurityGroupIngress"].([]any)
	require.Len(t, rules, 2)
	assert.EqualValues(t, 443, rules[0].(map[string]any)["FromPort"])

	labels := props["Labels"].(map[string]any)
	assert.Equal(t, "ingress", labels["role"])
}

func TestResource_WithIntrinsics(t *testing.T) {
	subnet := ec2.Subnet{
		VpcId:            Ref{LogicalName: "MainVpc"},
		AvailabilityZone: AZ(0),
		CidrBlock:        "10.1.0.0/26",
	}

	props, err := Resource(subnet)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"Ref": "MainVpc"}, props["VpcId"])
	assert.Equal(t, "10.1.0.0/26", props["CidrBlock"])
}

func TestResource_PropertySource(t *testing.T) {
	custom := cloudformation.CustomResource{
		Type:         "Custom::SubnetTagging",
		ServiceToken: GetAtt{LogicalName: "TaggingProvider", Attribute: "Arn"},
		Properties: map[string]any{
			"SubnetIds": []any{"subnet-1", "subnet-2"},
			"Empty":     nil,
		},
	}

	props, err := Resource(custom)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"Fn::GetAtt": []any{"TaggingProvider", "Arn"}}, props["ServiceToken"])
	assert.Equal(t, []any{"subnet-1", "subnet-2"}, props["SubnetIds"])
	assert.NotContains(t, props, "Empty")
}

func TestResource_WithPointer(t *testing.T) {
	props, err := Resource(&testGroup{GroupName: "alb"})
	require.NoError(t, err)

	assert.Equal(t, "alb", props["GroupName"])
}

func TestReferences(t *testing.T) {
	tests := []struct {
		name     string
		props    map[string]any
		refs     []string
		attrRefs []string
	}{
		{
			name:  "ref",
			props: map[string]any{"VpcId": map[string]any{"Ref": "MainVpc"}},
			refs:  []string{"MainVpc"},
		},
		{
			name:     "getatt",
			props:    map[string]any{"RoleArn": map[string]any{"Fn::GetAtt": []any{"ClusterRole", "Arn"}}},
			refs:     []string{"ClusterRole"},
			attrRefs: []string{"ClusterRole"},
		},
		{
			name:  "pseudo parameters are skipped",
			props: map[string]any{"Region": map[string]any{"Ref": "AWS::Region"}},
		},
		{
			name: "sub string",
			props: map[string]any{"Value": map[string]any{
				"Fn::Sub": "${Db.Endpoint.Address}:${DbPort}-${AWS::StackName}-${!Literal}",
			}},
			refs:     []string{"Db", "DbPort"},
			attrRefs: []string{"Db"},
		},
		{
			name: "sub with variables",
			props: map[string]any{"Value": map[string]any{
				"Fn::Sub": []any{"${Name}-${Bucket}", map[string]any{"Name": map[string]any{"Ref": "Cluster"}}},
			}},
			refs: []string{"Bucket", "Cluster"},
		},
		{
			name: "nested lists",
			props: map[string]any{"Subnets": []any{
				map[string]any{"Ref": "SubnetB"},
				map[string]any{"Ref": "SubnetA"},
				"subnet-literal",
			}},
			refs: []string{"SubnetA", "SubnetB"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs, attrRefs := References(tt.props)
			assert.Equal(t, tt.refs, refs)
			assert.Equal(t, tt.attrRefs, attrRefs)
		})
	}
}
