// Package autoscaling provides typed AWS::AutoScaling resources.
package autoscaling

// AutoScalingGroup represents AWS::AutoScaling::AutoScalingGroup.
type AutoScalingGroup struct {
	AutoScalingGroupName             any                                           `json:"AutoScalingGroupName,omitempty"`
	MinSize                          any                                           `json:"MinSize,omitempty"`
	MaxSize                          any                                           `json:"MaxSize,omitempty"`
	DesiredCapacity                  any                                           `json:"DesiredCapacity,omitempty"`
	VPCZoneIdentifier                []any                                         `json:"VPCZoneIdentifier,omitempty"`
	LaunchTemplate                   *AutoScalingGroup_LaunchTemplateSpecification `json:"LaunchTemplate,omitempty"`
	NewInstancesProtectedFromScaleIn any                                           `json:"NewInstancesProtectedFromScaleIn,omitempty"`
	Tags                             []AutoScalingGroup_TagProperty                `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r AutoScalingGroup) ResourceType() string { return "AWS::AutoScaling::AutoScalingGroup" }

// AutoScalingGroup_LaunchTemplateSpecification selects the launch template and version.
type AutoScalingGroup_LaunchTemplateSpecification struct {
	LaunchTemplateId any `json:"LaunchTemplateId,omitempty"`
	Version          any `json:"Version,omitempty"`
}

// AutoScalingGroup_TagProperty is a group tag, optionally propagated to instances.
type AutoScalingGroup_TagProperty struct {
	Key               any `json:"Key,omitempty"`
	Value             any `json:"Value,omitempty"`
	PropagateAtLaunch any `json:"PropagateAtLaunch,omitempty"`
}
