// Package awsqs provides the AWSQS::Kubernetes registry types used to install
// charts and apply manifests on EKS clusters from CloudFormation.
package awsqs

// KubernetesHelm represents AWSQS::Kubernetes::Helm.
type KubernetesHelm struct {
	ClusterID  any            `json:"ClusterID,omitempty"`
	Name       any            `json:"Name,omitempty"`
	Namespace  any            `json:"Namespace,omitempty"`
	Repository any            `json:"Repository,omitempty"`
	Chart      any            `json:"Chart,omitempty"`
	Version    any            `json:"Version,omitempty"`
	Values     map[string]any `json:"Values,omitempty"`
	ValueYaml  any            `json:"ValueYaml,omitempty"`
	TimeOut    any            `json:"TimeOut,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r KubernetesHelm) ResourceType() string { return "AWSQS::Kubernetes::Helm" }

// KubernetesResource represents AWSQS::Kubernetes::Resource.
type KubernetesResource struct {
	ClusterName any `json:"ClusterName,omitempty"`
	Namespace   any `json:"Namespace,omitempty"`
	Manifest    any `json:"Manifest,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r KubernetesResource) ResourceType() string { return "AWSQS::Kubernetes::Resource" }
