package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/urfave/cli/v3"
)

// envLambdaRuntimeAPI is set by the Lambda service in every function environment, including custom runtimes that
// start the binary as bootstrap with no arguments.
const envLambdaRuntimeAPI = "AWS_LAMBDA_RUNTIME_API"

// Default is the root action. Inside Lambda it starts the runtime loop, elsewhere it shows help.
func (r *Runner) Default(ctx context.Context, cmd *cli.Command) error {
	if os.Getenv(envLambdaRuntimeAPI) != "" {
		return r.Lambda(ctx, cmd)
	}
	return cli.ShowRootCommandHelp(cmd)
}

// Lambda starts the AWS Lambda runtime loop with [Runner.HandleInvocation] as the handler. It does not return while
// the runtime is serving.
func (r *Runner) Lambda(ctx context.Context, cmd *cli.Command) error {
	r.logger.Debug("starting lambda runtime", "runtime_api", os.Getenv(envLambdaRuntimeAPI))
	r.startLambda(ctx, r.HandleInvocation)
	return nil
}

// HandleInvocation runs one extraction per trigger. The event is ignored and nothing is returned to the caller besides
// the error, which marks the invocation failed.
func (r *Runner) HandleInvocation(ctx context.Context, event json.RawMessage) error {
	logger := r.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("request_id", lc.AwsRequestID)
	}
	logger.Debug("invocation received", "event_bytes", len(event))

	result, err := r.extract(ctx, nil)
	if err != nil {
		logger.Error("invocation failed", "error", err)
		return err
	}

	logger.Info("invocation complete", "key", result.Key, "run_id", result.RunID)
	return nil
}
