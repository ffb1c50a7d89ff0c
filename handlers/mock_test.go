package handlers

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/stretchr/testify/mock"
)

// mockEC2 implements the EC2 calls the handlers make. Calls to anything
// else panic through the nil embedded interface.
type mockEC2 struct {
	ec2iface.EC2API
	mock.Mock
}

func (m *mockEC2) CreateTagsWithContext(ctx aws.Context, in *ec2.CreateTagsInput, _ ...request.Option) (*ec2.CreateTagsOutput, error) {
	args := m.Called(ctx, in)
	return &ec2.CreateTagsOutput{}, args.Error(0)
}

func (m *mockEC2) DeleteTagsWithContext(ctx aws.Context, in *ec2.DeleteTagsInput, _ ...request.Option) (*ec2.DeleteTagsOutput, error) {
	args := m.Called(ctx, in)
	return &ec2.DeleteTagsOutput{}, args.Error(0)
}

func (m *mockEC2) DescribeRouteTablesWithContext(ctx aws.Context, in *ec2.DescribeRouteTablesInput, _ ...request.Option) (*ec2.DescribeRouteTablesOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ec2.DescribeRouteTablesOutput)
	return out, args.Error(1)
}

func (m *mockEC2) CreateRouteWithContext(ctx aws.Context, in *ec2.CreateRouteInput, _ ...request.Option) (*ec2.CreateRouteOutput, error) {
	args := m.Called(ctx, in)
	return &ec2.CreateRouteOutput{Return: aws.Bool(true)}, args.Error(0)
}

func (m *mockEC2) DeleteRouteWithContext(ctx aws.Context, in *ec2.DeleteRouteInput, _ ...request.Option) (*ec2.DeleteRouteOutput, error) {
	args := m.Called(ctx, in)
	return &ec2.DeleteRouteOutput{}, args.Error(0)
}

func (m *mockEC2) ModifyVpcPeeringConnectionOptionsWithContext(ctx aws.Context, in *ec2.ModifyVpcPeeringConnectionOptionsInput, _ ...request.Option) (*ec2.ModifyVpcPeeringConnectionOptionsOutput, error) {
	args := m.Called(ctx, in)
	return &ec2.ModifyVpcPeeringConnectionOptionsOutput{}, args.Error(0)
}

func (m *mockEC2) AcceptVpcPeeringConnectionWithContext(ctx aws.Context, in *ec2.AcceptVpcPeeringConnectionInput, _ ...request.Option) (*ec2.AcceptVpcPeeringConnectionOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ec2.AcceptVpcPeeringConnectionOutput)
	return out, args.Error(1)
}

func (m *mockEC2) DescribeNetworkInterfacesWithContext(ctx aws.Context, in *ec2.DescribeNetworkInterfacesInput, _ ...request.Option) (*ec2.DescribeNetworkInterfacesOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ec2.DescribeNetworkInterfacesOutput)
	return out, args.Error(1)
}

func (m *mockEC2) DeleteNetworkInterfaceWithContext(ctx aws.Context, in *ec2.DeleteNetworkInterfaceInput, _ ...request.Option) (*ec2.DeleteNetworkInterfaceOutput, error) {
	args := m.Called(ctx, in)
	return &ec2.DeleteNetworkInterfaceOutput{}, args.Error(0)
}

func (m *mockEC2) DescribeSecurityGroupsWithContext(ctx aws.Context, in *ec2.DescribeSecurityGroupsInput, _ ...request.Option) (*ec2.DescribeSecurityGroupsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*ec2.DescribeSecurityGroupsOutput)
	return out, args.Error(1)
}

func (m *mockEC2) DeleteSecurityGroupWithContext(ctx aws.Context, in *ec2.DeleteSecurityGroupInput, _ ...request.Option) (*ec2.DeleteSecurityGroupOutput, error) {
	args := m.Called(ctx, in)
	return &ec2.DeleteSecurityGroupOutput{}, args.Error(0)
}
