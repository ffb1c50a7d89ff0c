package compute

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-aws-constructs-go"
	"github.com/lex00/wetwire-aws-constructs-go/constructs/networking"
	"github.com/lex00/wetwire-aws-constructs-go/stack"
)

func synth(t *testing.T, s *stack.Stack) *wetwire.Template {
	t.Helper()
	tmpl, _, err := s.Synth()
	require.NoError(t, err)
	return tmpl
}

func ofType(tmpl *wetwire.Template, resourceType string) []string {
	var ids []string
	for id, r := range tmpl.Resources {
		if r.Type == resourceType {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func ref(id string) map[string]any { return map[string]any{"Ref": id} }

func getAtt(id, attr string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{id, attr}}
}

func newVpc(t *testing.T, s *stack.Stack) *networking.Vpc {
	t.Helper()
	vpc, err := networking.NewVpc(s.Root(), "main", networking.VpcProps{Seed: 1})
	require.NoError(t, err)
	return vpc
}

func tagValue(props map[string]any, key string) any {
	tags, _ := props["Tags"].([]any)
	for _, tag := range tags {
		m := tag.(map[string]any)
		if m["Key"] == key {
			return m["Value"]
		}
	}
	return nil
}
