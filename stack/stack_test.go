package stack

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/resources/ec2"
	"github.com/lex00/wetwire-aws-constructs-go/resources/s3"
)

func TestConstructID(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{"single", []string{"main"}, "Main"},
		{"kebab parts", []string{"main", "private-subnet", "1"}, "MainPrivateSubnet1"},
		{"already pascal", []string{"Cluster", "NodeRole"}, "ClusterNodeRole"},
		{"path separators", []string{"eks/cluster"}, "EksCluster"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructID(tt.parts...))
		})
	}
}

func TestTruncateWithSemiHash(t *testing.T) {
	assert.Equal(t, "Short", TruncateWithSemiHash("Short", 10))

	long := strings.Repeat("A", 300)
	other := strings.Repeat("A", 299) + "B"

	a := TruncateWithSemiHash(long, MaxLogicalIDLength)
	b := TruncateWithSemiHash(other, MaxLogicalIDLength)

	assert.Len(t, a, MaxLogicalIDLength)
	assert.Len(t, b, MaxLogicalIDLength)
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, strings.Repeat("A", 200)))
}

func TestScope_Add(t *testing.T) {
	s := New("network")
	main := s.Root().Child("main")

	vpc, err := main.Add("vpc", ec2.VPC{CidrBlock: "10.1.0.0/16"})
	require.NoError(t, err)
	assert.Equal(t, "MainVpc", vpc.LogicalID)
	assert.Equal(t, "AWS::EC2::VPC", vpc.Type)
	assert.Equal(t, intrinsics.Ref{LogicalName: "MainVpc"}, vpc.Ref())
	assert.Equal(t, intrinsics.GetAtt{LogicalName: "MainVpc", Attribute: "CidrBlock"}, vpc.GetAtt("CidrBlock"))

	_, err = main.Add("subnet", ec2.Subnet{VpcId: vpc.Ref(), CidrBlock: "10.1.0.0/26"})
	require.NoError(t, err)

	tmpl, nodes, err := s.Synth()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "MainVpc", nodes[0].LogicalID)
	assert.Equal(t, "MainSubnet", nodes[1].LogicalID)
	assert.Equal(t, "main", nodes[1].Construct)
	assert.Equal(t, []string{"MainVpc"}, nodes[1].Dependencies)
	assert.Contains(t, tmpl.Resources, "MainSubnet")
}

func TestScope_AddDuplicate(t *testing.T) {
	s := New("network")

	_, err := s.Root().Child("main").Add("vpc", ec2.VPC{CidrBlock: "10.1.0.0/16"})
	require.NoError(t, err)

	_, err = s.Root().Add("main-vpc", ec2.VPC{CidrBlock: "10.2.0.0/16"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestScope_Path(t *testing.T) {
	s := New("eks")
	scope := s.Root().Child("cluster").Child("lb-controller")

	assert.Equal(t, "cluster/lb-controller", scope.Path())
	assert.Equal(t, "ClusterLbControllerRole", scope.ID("role"))
	assert.Same(t, s, scope.Stack())
	assert.Equal(t, "", s.Root().Path())
}

func TestScope_ChildDoesNotShareBacking(t *testing.T) {
	s := New("eks")
	parent := s.Root().Child("a").Child("b")
	x := parent.Child("x")
	y := parent.Child("y")

	assert.Equal(t, "a/b/x", x.Path())
	assert.Equal(t, "a/b/y", y.Path())
}

func TestResourceOptions(t *testing.T) {
	s := New("storage")
	root := s.Root()

	bucket, err := root.Add("bucket", s3.Bucket{BucketName: "assets"}, RemovalPolicy(PolicyRetain))
	require.NoError(t, err)

	_, err = root.Add("logs", s3.Bucket{BucketName: "logs"}, DependsOn(bucket, Handle{}), DeletionPolicy(PolicyDelete), UpdateReplacePolicy(PolicySnapshot))
	require.NoError(t, err)

	tmpl, _, err := s.Synth()
	require.NoError(t, err)

	assert.Equal(t, PolicyRetain, tmpl.Resources["Bucket"].DeletionPolicy)
	assert.Equal(t, PolicyRetain, tmpl.Resources["Bucket"].UpdateReplacePolicy)
	assert.Equal(t, []string{"Bucket"}, tmpl.Resources["Logs"].DependsOn)
	assert.Equal(t, PolicyDelete, tmpl.Resources["Logs"].DeletionPolicy)
	assert.Equal(t, PolicySnapshot, tmpl.Resources["Logs"].UpdateReplacePolicy)
}

func TestAddParameterAndOutput(t *testing.T) {
	s := New("handlers", WithDescription("custom resource handlers"))
	root := s.Root()

	bucket, err := root.AddParameter("code-bucket", wetwire.Parameter{Description: "handler code bucket"})
	require.NoError(t, err)
	assert.Equal(t, "CodeBucket", bucket.LogicalName)

	_, err = root.Add("bucket-copy", s3.Bucket{BucketName: bucket})
	require.NoError(t, err)

	require.NoError(t, root.AddOutput("bucket-name", wetwire.Output{Value: bucket}))
	err = root.AddOutput("bucket-name", wetwire.Output{Value: bucket})
	assert.True(t, errors.Is(err, ErrDuplicateID))

	_, err = root.AddParameter("code-bucket", wetwire.Parameter{})
	assert.True(t, errors.Is(err, ErrDuplicateID))

	tmpl, _, err := s.Synth()
	require.NoError(t, err)
	assert.Equal(t, "custom resource handlers", tmpl.Description)
	assert.Equal(t, "String", tmpl.Parameters["CodeBucket"].Type)
	assert.Equal(t, map[string]any{"Ref": "CodeBucket"}, tmpl.Outputs["BucketName"].Value)
}

func TestWithTags(t *testing.T) {
	s := New("network", WithTags(map[string]string{"project": "demo"}))

	_, err := s.Root().Add("vpc", ec2.VPC{CidrBlock: "10.1.0.0/16"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"project": "demo"}, s.Tags())

	tmpl, _, err := s.Synth()
	require.NoError(t, err)
	assert.Equal(t,
		[]any{map[string]any{"Key": "project", "Value": "demo"}},
		tmpl.Resources["Vpc"].Properties["Tags"])
}

func TestWithEnv(t *testing.T) {
	pinned := New("a", WithEnv("123456789012", "eu-west-1"))
	assert.Equal(t, "123456789012", pinned.Account())
	assert.Equal(t, "eu-west-1", pinned.Region())

	unpinned := New("b")
	assert.Equal(t, intrinsics.AWS_ACCOUNT_ID, unpinned.Account())
	assert.Equal(t, intrinsics.AWS_REGION, unpinned.Region())
}

func TestSingleton(t *testing.T) {
	s := New("network")
	calls := 0
	create := func() (any, error) {
		calls++
		return "provider", nil
	}

	v1, err := s.Singleton("subnet-tagging", create)
	require.NoError(t, err)
	v2, err := s.Singleton("subnet-tagging", create)
	require.NoError(t, err)

	assert.Equal(t, "provider", v1)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)

	_, err = s.Singleton("broken", func() (any, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	v3, err := s.Singleton("broken", func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v3)
}

func TestSynth_UndefinedReference(t *testing.T) {
	s := New("broken")
	_, err := s.Root().Add("subnet", ec2.Subnet{VpcId: intrinsics.Ref{LogicalName: "Missing"}})
	require.NoError(t, err)

	_, _, err = s.Synth()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesizing stack broken")
	assert.Contains(t, err.Error(), "Missing")
}
