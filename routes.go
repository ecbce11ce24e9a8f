package main

import (
	"github.com/gofiber/fiber/v2"

	appconfig "helloworld/config"
	"helloworld/metrics"
	"helloworld/middleware"
	appserver "helloworld/server"
	"helloworld/trpc"
)

// setupRoutes registers CORS, the optional metrics endpoint, the RPC adapter
// and the liveness check, in that order.
func setupRoutes(app *fiber.App, config *appconfig.Config, router trpc.Router) {
	// CORS configuration
	app.Use(middleware.CORS(middleware.PolicyFor(config)))

	// Optional Prometheus metrics
	if config.EnableMetrics {
		app.Use(metrics.PrometheusMiddleware())
		app.Get("/metrics", appserver.HTTPHandler(metrics.Handler()))
	}

	trpc.Mount(app, "/trpc", trpc.Options{
		Router:      router,
		Development: config.IsDev,
	})

	appserver.RegisterHealth(app)
}
