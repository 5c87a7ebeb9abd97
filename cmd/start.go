package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-import/core/loader"
	"inventory-import/core/logger"
	"inventory-import/core/metrics"
	"inventory-import/core/middleware/auth"
	"inventory-import/core/middleware/rayid"
	"inventory-import/feature/inventory"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "inventory-import/docs/swagger"
)

// @title Inventory Import API
// @version 1.0
// @description Bulk CSV import of inventory items.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// multipartOverhead is allowed on top of the upload limit for form boundaries and headers.
const multipartOverhead = 1 << 20

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory import server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load configuration, logger, database and storage
		rt, err := bootstrap(context.Background())
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		cfg := rt.cfg
		bodyLimit := cfg.Import.MaxUploadBytes
		if bodyLimit <= 0 {
			bodyLimit = 10 << 20
		}

		// 2. Initialize Fiber App
		// Uploads may be multipart, so allow some room above the CSV limit
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             bodyLimit + multipartOverhead,
		})

		// 3. Initialize Feature Loader
		mgr := loader.NewManager()
		inv := inventory.NewFeature(rt.db, rt.client, cfg.Storage, cfg.Import, logg)
		mgr.Register(inv)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Request metrics
		app.Use(metrics.Middleware())

		// 4. Swagger Documentation and metrics (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", metrics.Handler())

		// 5. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/metrics"}}))
		if !cfg.Server.AuthEnabled() {
			logg.Warn("API key not configured, requests are not authenticated")
		}

		// 4. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		if !inv.IsEnabled() {
			logg.Warn("Inventory feature disabled, no database connection")
		}

		// 5. Start Server
		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		// Stop accepting requests first, then let running imports settle
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		grace := time.Duration(cfg.Server.ShutdownSeconds) * time.Second
		if grace <= 0 {
			grace = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			logg.Warn("HTTP shutdown incomplete", zap.Error(err))
		}
		if svc := inv.Service(); svc != nil {
			if err := svc.Shutdown(ctx); err != nil {
				logg.Warn("Import jobs did not settle before shutdown", zap.Error(err))
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
