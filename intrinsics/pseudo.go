package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

// Pseudo-parameters resolved by CloudFormation for the stack being deployed.
var (
	AWS_ACCOUNT_ID = intrinsics.AWS_ACCOUNT_ID
	AWS_NO_VALUE   = intrinsics.AWS_NO_VALUE
	AWS_PARTITION  = intrinsics.AWS_PARTITION
	AWS_REGION     = intrinsics.AWS_REGION
	AWS_STACK_NAME = intrinsics.AWS_STACK_NAME
	AWS_URL_SUFFIX = intrinsics.AWS_URL_SUFFIX
)
