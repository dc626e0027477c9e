package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"dealcore/internal/config"
	"dealcore/internal/http/handlers"
	applog "dealcore/internal/log"
	"dealcore/internal/repos"
	"dealcore/internal/scheduler"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	deps := handlers.NewDeps(db, cfg, handlers.External{})

	engine := html.New(cfg.TemplatesDir, ".html")
	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"status": 429, "message": "rate limit exceeded, retry soon", "errorCode": 429})
		},
	}))

	writeLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + c.Get(handlers.HeaderUserID) + "|write"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.write.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"status": 429, "message": "too many writes, retry soon", "errorCode": 429})
		},
	})

	// ---------- Routes ----------
	deps.Routes(app.Group("/api/v1"), writeLimiter)
	app.Get("/dashboard/summary", deps.ReportHandler.Dashboard)
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	// ---------- Scheduler ----------
	sched, err := scheduler.New(cfg.Location(), scheduler.Spec{
		DealsOfTheDay: cfg.DealsOfTheDayCron,
		Reconcile:     cfg.ReconcileCron,
	}, scheduler.Jobs{
		DealsOfTheDay: deps.DOTD,
		Reconcile:     deps.Reconcile,
		Index:         deps.Index,
	})
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.Start()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Printf("[shutdown] draining")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("[shutdown] http: %v", err)
	}
	sched.Stop(ctx)
	deps.Approval.Wait()
}
