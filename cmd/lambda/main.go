package main

import (
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/berniyo/paygate/internal/config"
	"github.com/berniyo/paygate/internal/handler"
	"github.com/berniyo/paygate/internal/logging"
	"github.com/berniyo/paygate/internal/paygate"
)

func main() {
	cfg, err := config.Load(os.Getenv("PAYGATE_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	client := paygate.NewClient(cfg.API.BaseURL, nil,
		paygate.WithLogger(logger),
		paygate.WithMetrics(paygate.NewMetrics("paygate_lambda", nil)),
	)

	opts := []handler.Option{handler.WithLogger(logger)}
	if cfg.Callback.URL != "" {
		sender, err := handler.NewHTTPSCallbackSender(cfg.Callback.URL, cfg.Callback.Secret, nil)
		if err != nil {
			logger.Fatal("failed to configure callback sender", zap.Error(err))
		}
		opts = append(opts, handler.WithCallbackSender(sender))
	}

	processor := handler.NewProcessor(client, opts...)

	lambda.Start(processor.Handle)
}
