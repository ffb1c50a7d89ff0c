// Package cloudformation provides Lambda-backed custom resources.
package cloudformation

// CustomResourceType is the type used when CustomResource.Type is empty.
const CustomResourceType = "AWS::CloudFormation::CustomResource"

// CustomResource represents a custom resource such as Custom::SubnetTagging.
// Its properties are free-form and passed to the handler behind ServiceToken.
type CustomResource struct {
	// Type is the custom type name (e.g., "Custom::VpcPeeringRoutes")
	Type string
	// ServiceToken is the ARN of the handler function
	ServiceToken any
	// Properties are sent to the handler as ResourceProperties
	Properties map[string]any
}

// ResourceType returns the CloudFormation resource type.
func (r CustomResource) ResourceType() string {
	if r.Type == "" {
		return CustomResourceType
	}
	return r.Type
}

// ResourceProperties returns ServiceToken merged with the handler properties.
func (r CustomResource) ResourceProperties() map[string]any {
	props := make(map[string]any, len(r.Properties)+1)
	for k, v := range r.Properties {
		props[k] = v
	}
	props["ServiceToken"] = r.ServiceToken
	return props
}
