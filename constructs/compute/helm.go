package compute

import (
	"fmt"
	"slices"
	"sort"
	"strconv"

	"helm.sh/helm/v3/pkg/strvals"

	"github.com/lex00/wetwire-aws-constructs-go/resources/awsqs"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// EksHelmChartProps configures NewEksHelmChart.
type EksHelmChartProps struct {
	ClusterName any
	Chart       string
	Repository  string
	Namespace   string
	// CreateNamespace applies a Namespace manifest before the chart.
	CreateNamespace bool
	Release         string
	Version         string
	// Values may nest maps and hold intrinsics as leaves.
	Values map[string]any
	// Set holds key=value overrides in helm --set syntax. They win over Values.
	Set []string
}

// NewEksHelmChart installs a chart with the AWSQS::Kubernetes::Helm type.
func NewEksHelmChart(scope *stack.Scope, id string, props EksHelmChartProps, opts ...stack.ResourceOption) (stack.Handle, error) {
	if props.ClusterName == nil {
		return stack.Handle{}, fmt.Errorf("helm chart %s: ClusterName is required", id)
	}
	if props.Chart == "" {
		return stack.Handle{}, fmt.Errorf("helm chart %s: Chart is required", id)
	}

	values, err := chartValues(props.Values, props.Set)
	if err != nil {
		return stack.Handle{}, fmt.Errorf("helm chart %s: %w", id, err)
	}

	if props.CreateNamespace && props.Namespace != "" {
		ns, err := NewKubernetesManifest(scope, id+"-namespace", KubernetesManifestProps{
			ClusterName: props.ClusterName,
			Object:      Namespace(props.Namespace),
		}, opts...)
		if err != nil {
			return stack.Handle{}, err
		}
		opts = append(slices.Clone(opts), stack.DependsOn(ns))
	}

	return scope.Add(id, awsqs.KubernetesHelm{
		ClusterID:  props.ClusterName,
		Name:       optional(props.Release),
		Namespace:  optional(props.Namespace),
		Repository: optional(props.Repository),
		Chart:      props.Chart,
		Version:    optional(props.Version),
		Values:     values,
	}, opts...)
}

// chartValues merges values and --set overrides and flattens them to the
// dotted keys the Helm resource type accepts.
func chartValues(values map[string]any, set []string) (map[string]any, error) {
	merged := make(map[string]any)
	for k, v := range values {
		merged[k] = v
	}
	for _, s := range set {
		overrides, err := strvals.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", s, err)
		}
		mergeValues(merged, overrides)
	}
	if len(merged) == 0 {
		return nil, nil
	}

	flat := make(map[string]any)
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		flatten(k, merged[k], flat)
	}
	return flat, nil
}

func mergeValues(dst, src map[string]any) {
	for k, v := range src {
		sub, isMap := v.(map[string]any)
		existing, wasMap := dst[k].(map[string]any)
		if isMap && wasMap {
			copied := make(map[string]any, len(existing))
			for ek, ev := range existing {
				copied[ek] = ev
			}
			mergeValues(copied, sub)
			dst[k] = copied
			continue
		}
		dst[k] = v
	}
}

func flatten(prefix string, v any, out map[string]any) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flatten(prefix+"."+k, child, out)
		}
	case map[string]string:
		for k, child := range val {
			out[prefix+"."+k] = child
		}
	case []any:
		for i, child := range val {
			flatten(prefix+"["+strconv.Itoa(i)+"]", child, out)
		}
	case string:
		out[prefix] = val
	case bool, int, int32, int64, float32, float64:
		out[prefix] = fmt.Sprint(val)
	case nil:
		// unset, as with helm --set key=null
	default:
		// intrinsics resolve at deploy time
		out[prefix] = val
	}
}
