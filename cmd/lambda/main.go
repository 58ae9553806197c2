// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main runs the catalog API behind API Gateway HTTP APIs. The
// service is built once per cold start and reused across invocations.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"

	"attrcatalog/internal/app"
	"attrcatalog/internal/config"
)

var chiLambda *chiadapter.ChiLambdaV2

func init() {
	start := time.Now()
	app.SetupLogger("production")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	svc, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start service", "error", err)
		os.Exit(1)
	}
	chiLambda = chiadapter.NewV2(svc.Router)

	slog.Info("lambda cold start completed", "elapsed", time.Since(start).String())
}

// Handler proxies one API Gateway request through the chi router.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
