package main

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/cloudbeacon/driftlog/internal/config"
	"github.com/cloudbeacon/driftlog/internal/logger"
	"github.com/cloudbeacon/driftlog/internal/runner"
	"github.com/cloudbeacon/driftlog/internal/store"
)

// request is the Lambda invocation payload. An empty service list runs
// the configured default set.
type request struct {
	Services []string `json:"services"`
}

type response struct {
	StatusCode int  `json:"statusCode"`
	Body       body `json:"body"`
}

type body struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Elapsed string              `json:"elapsed"`
}

// handle runs one collection pass. Collection problems are reported in
// the response body; the handler only errors when the store itself is
// unusable.
func handle(ctx context.Context, req request) (response, error) {
	cfg, err := config.Load("")
	if err != nil {
		return response{}, err
	}
	log := logger.New(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return response{}, err
	}

	st, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		return response{}, err
	}
	defer st.Close()

	if err := st.CreateSchema(); err != nil {
		return response{}, err
	}

	summary := runner.New(cfg, st, log).Run(ctx, req.Services)

	return response{
		StatusCode: 200,
		Body: body{
			Message: strings.Join(summary.Messages, " | "),
			Errors:  summary.Errors,
			Elapsed: summary.Elapsed.String(),
		},
	}, nil
}

func main() {
	lambda.Start(handle)
}
