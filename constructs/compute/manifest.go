package compute

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	"github.com/lex00/wetwire-aws-constructs-go/resources/awsqs"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// KubernetesManifestProps configures NewKubernetesManifest.
type KubernetesManifestProps struct {
	ClusterName any
	Namespace   string
	Object      runtime.Object
}

// NewKubernetesManifest applies a Kubernetes object to the cluster.
func NewKubernetesManifest(scope *stack.Scope, id string, props KubernetesManifestProps, opts ...stack.ResourceOption) (stack.Handle, error) {
	if props.ClusterName == nil {
		return stack.Handle{}, fmt.Errorf("manifest %s: ClusterName is required", id)
	}
	if props.Object == nil {
		return stack.Handle{}, fmt.Errorf("manifest %s: Object is required", id)
	}
	manifest, err := yaml.Marshal(props.Object)
	if err != nil {
		return stack.Handle{}, fmt.Errorf("manifest %s: %w", id, err)
	}
	return scope.Add(id, awsqs.KubernetesResource{
		ClusterName: props.ClusterName,
		Namespace:   optional(props.Namespace),
		Manifest:    string(manifest),
	}, opts...)
}

// ServiceAccount returns a service account object.
func ServiceAccount(name, namespace string, labels map[string]string) *corev1.ServiceAccount {
	return &corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels,
		},
	}
}

// Namespace returns a namespace object.
func Namespace(name string) *corev1.Namespace {
	return &corev1.Namespace{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
}
