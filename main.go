package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/jdwit/ssh-auth-analyzer/internal/analyzer"
	"github.com/jdwit/ssh-auth-analyzer/internal/config"
	"github.com/jdwit/ssh-auth-analyzer/internal/logging"
	"github.com/jdwit/ssh-auth-analyzer/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config failed", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	sess, err := newSession()
	if err != nil {
		slog.Error("session failed", "error", err)
		os.Exit(1)
	}

	a, err := analyzer.New(cfg, sess)
	if err != nil {
		slog.Error("analyzer init failed", "error", err)
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.Info("starting lambda handler")
		lambda.Start(a.HandleLambdaEvent)
		return
	}

	input := cfg.InputPath
	if len(os.Args) > 1 {
		input = os.Args[1]
	}
	if input == "" {
		slog.Error("usage: ssh-auth-analyzer <auth.log | s3-url> (or set INPUT_PATH)")
		os.Exit(1)
	}

	if _, err := a.Run(context.Background(), input); err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(types.ExitCode(err))
	}
}

func newSession() (*session.Session, error) {
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		return session.NewSession(&aws.Config{
			Endpoint:         aws.String(endpoint),
			DisableSSL:       aws.Bool(true),
			S3ForcePathStyle: aws.Bool(true),
		})
	}
	return session.NewSession()
}
