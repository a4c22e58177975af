package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	lambdaadapter "github.com/PabloGalante/wisdom-coach/internal/adapters/lambda"
	"github.com/PabloGalante/wisdom-coach/internal/bootstrap"
	"github.com/PabloGalante/wisdom-coach/internal/config"
	"github.com/PabloGalante/wisdom-coach/internal/observability"
)

func main() {
	ctx := context.Background()

	v, err := config.New("")
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("WISDOM_AUTH_JWT_SECRET is required for the lambda handler")
	}
	observability.SetLevel(cfg.LogLevel)

	// clients are reused across warm invocations
	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("error initializing app: %v", err)
	}

	h := lambdaadapter.NewJournalEntryHandler(app.Coach, app.Journal, app.Auth)
	lambda.Start(h.Handle)
}
