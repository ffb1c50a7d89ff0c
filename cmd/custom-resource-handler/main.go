// Command custom-resource-handler is the Lambda function behind every
// custom resource the constructs declare.
//
// Build it for the provided.al2023 runtime and upload the zip where the
// stacks' HandlerCodeBucket and HandlerCodeKey point:
//
//	GOOS=linux GOARCH=arm64 go build -o bootstrap ./cmd/custom-resource-handler
//	zip custom-resource-handler.zip bootstrap
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/lex00/wetwire-aws-constructs-go/handlers"
	"github.com/lex00/wetwire-aws-constructs-go/internal/logging"
)

func main() {
	logger, err := logging.NewProductionLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	sess := session.Must(session.NewSession())
	router := handlers.New(ec2.New(sess), logger)

	lambda.Start(cfn.LambdaWrap(router.Handle))
}
