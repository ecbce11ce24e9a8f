// helloworld API
//
// helloworld serves a typed RPC API under /trpc and a liveness check under /health.
// CORS and the allowed frontend origin are derived from the environment.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"helloworld/approuter"
	appconfig "helloworld/config"
	appserver "helloworld/server"
	"helloworld/trpc"
	"helloworld/utils"
)

const shutdownTimeout = 10 * time.Second

// newApp builds the HTTP server for cfg with router mounted under /trpc.
func newApp(cfg *appconfig.Config, router trpc.Router) *fiber.App {
	app := appserver.CreateFiberApp(cfg)
	setupRoutes(app, cfg, router)
	return app
}

func main() {
	// Initialize logging
	utils.InitLogging()

	// Load configuration
	config := appconfig.LoadConfig()
	utils.LogInfo("Starting helloworld API", "env", config.Environment, "port", config.Port)

	app := newApp(config, approuter.New())

	ln, err := appserver.Bind(config)
	if err != nil {
		utils.LogError("SERVER_LISTEN", err, "port", config.Port)
		os.Exit(1)
	}
	utils.LogInfo("🚀 Fiber running at http://" + config.Addr("localhost"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		utils.LogInfo("Shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			utils.LogError("SERVER_SHUTDOWN", err)
		}
	}()

	if err := app.Listener(ln); err != nil {
		utils.LogError("SERVER_LISTEN", err, "port", config.Port)
		os.Exit(1)
	}
}
