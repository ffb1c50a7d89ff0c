package networking

import (
	"fmt"
	"sort"

	"github.com/lex00/wetwire-aws-constructs-go/constructs/custom"
	. "github.com/lex00/wetwire-aws-constructs-go/intrinsics"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

// SubnetTaggingProps configures NewSubnetTagging.
type SubnetTaggingProps struct {
	SubnetIDs []any
	Tags      map[string]string
}

// NewSubnetTagging tags subnets the stack does not own. Tags are created on
// create and update and removed on delete.
func NewSubnetTagging(scope *stack.Scope, id string, props SubnetTaggingProps) (stack.Handle, error) {
	if len(props.SubnetIDs) == 0 {
		return stack.Handle{}, fmt.Errorf("subnet tagging %s: no subnets", id)
	}
	if len(props.Tags) == 0 {
		return stack.Handle{}, fmt.Errorf("subnet tagging %s: no tags", id)
	}

	provider, err := custom.ProviderFor(scope, custom.ProviderProps{
		ResourceType: custom.TypeSubnetTagging,
		Statements: []PolicyStatement{
			Allow([]string{"ec2:CreateTags", "ec2:DeleteTags"}),
		},
	})
	if err != nil {
		return stack.Handle{}, err
	}

	keys := make([]string, 0, len(props.Tags))
	for k := range props.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tags := make([]any, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, map[string]any{"Key": k, "Value": props.Tags[k]})
	}

	return custom.NewResource(scope, id, provider, custom.TypeSubnetTagging, map[string]any{
		"SubnetIds": props.SubnetIDs,
		"Tags":      tags,
	})
}
