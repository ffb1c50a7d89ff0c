// Package intrinsics provides CloudFormation intrinsic functions.
//
// This package re-exports the core intrinsic types from cloudformation-schema-go
// and adds helpers the constructs use to build ARNs and pick availability zones.
//
// Core intrinsic functions:
//
//	Ref{"MainVpc"} → {"Ref": "MainVpc"}
//	Sub{"${AWS::Region}-cluster"} → {"Fn::Sub": "${AWS::Region}-cluster"}
//	Select{0, GetAZs{}} → {"Fn::Select": [0, {"Fn::GetAZs": ""}]}
//
// Pseudo-parameters:
//
//	AWS_REGION, AWS_ACCOUNT_ID, AWS_STACK_NAME, etc.
package intrinsics

import (
	"fmt"
	"sort"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// SubWithMap is Fn::Sub with a variable map.
	SubWithMap = intrinsics.SubWithMap

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
	GetAZs = intrinsics.GetAZs

	// Base64 represents a CloudFormation Fn::Base64 intrinsic function.
	Base64 = intrinsics.Base64

	// ImportValue represents a CloudFormation Fn::ImportValue intrinsic function.
	ImportValue = intrinsics.ImportValue

	// Split represents a CloudFormation Fn::Split intrinsic function.
	Split = intrinsics.Split

	// Cidr represents a CloudFormation Fn::Cidr intrinsic function.
	Cidr = intrinsics.Cidr

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// AZ selects the availability zone at index from the stack region.
func AZ(index int) Select {
	return Select{Index: index, List: GetAZs{}}
}

// Arn builds an ARN in the stack's partition, region and account:
//
//	Arn("ec2", "route-table/*") → arn:${AWS::Partition}:ec2:${AWS::Region}:${AWS::AccountId}:route-table/*
func Arn(service, resource string) Sub {
	return Sub{String: fmt.Sprintf("arn:${AWS::Partition}:%s:${AWS::Region}:${AWS::AccountId}:%s", service, resource)}
}

// ManagedPolicyArn returns the ARN of an AWS managed IAM policy.
func ManagedPolicyArn(name string) Sub {
	return Sub{String: "arn:${AWS::Partition}:iam::aws:policy/" + name}
}

// Tags converts a key/value map into CloudFormation tags, sorted by key.
func Tags(kv map[string]any) []any {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make([]any, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, Tag{Key: k, Value: kv[k]})
	}
	return tags
}

// IntPtr returns a pointer to the given int value.
func IntPtr(i int) *int {
	return &i
}

// BoolPtr returns a pointer to the given bool value.
// Used for properties where false must be serialized explicitly.
func BoolPtr(b bool) *bool {
	return &b
}
