// Package secretsmanager provides typed AWS::SecretsManager resources.
package secretsmanager

// Secret represents AWS::SecretsManager::Secret.
type Secret struct {
	Name                 any                          `json:"Name,omitempty"`
	Description          any                          `json:"Description,omitempty"`
	GenerateSecretString *Secret_GenerateSecretString `json:"GenerateSecretString,omitempty"`
	Tags                 []any                        `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation resource type.
func (r Secret) ResourceType() string { return "AWS::SecretsManager::Secret" }

// Secret_GenerateSecretString configures the generated secret value.
type Secret_GenerateSecretString struct {
	ExcludeCharacters    any `json:"ExcludeCharacters,omitempty"`
	ExcludePunctuation   any `json:"ExcludePunctuation,omitempty"`
	IncludeSpace         any `json:"IncludeSpace,omitempty"`
	PasswordLength       any `json:"PasswordLength,omitempty"`
	SecretStringTemplate any `json:"SecretStringTemplate,omitempty"`
	GenerateStringKey    any `json:"GenerateStringKey,omitempty"`
}
