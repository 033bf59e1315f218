// Lambda entrypoint for the delivery stream's record transformation step.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/loghose/loghose"
	"github.com/loghose/loghose/entity"
)

// Used when no spec is provided in the LOGHOSE_SPEC env var.
var defaultSpec = []byte(`
{
   "namespace": "loghose",
   "streamIdSuffix": "applog",
   "version": 1,
   "description": "Default application log stream: mark and timestamp each record"
}`)

func main() {
	config := loghose.NewConfig()
	config.Spec = []byte(os.Getenv("LOGHOSE_SPEC"))
	if len(config.Spec) == 0 {
		config.Spec = defaultSpec
	}
	config.Ops.Log = true

	l, err := loghose.New(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, event entity.TransformEvent) (entity.TransformResponse, error) {
		return l.Transform(ctx, event), nil
	})
}
