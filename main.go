package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/taskboard/modules/api"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/notification"
	"github.com/example/taskboard/modules/task"
	"github.com/example/taskboard/modules/web"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Taskboard ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Register modules with the framework
	// Order: independent modules first, then dependent modules
	app.Register(auth.NewModule())         // Identity provider
	app.Register(task.NewModule())         // Task store + query/mutation services
	app.Register(notification.NewModule()) // Task activity log
	app.Register(api.NewModule())          // JSON gateway (bearer tokens)
	app.Register(web.NewModule())          // Rendered gateway (sessions)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("JSON API (http://localhost:3000):")
	log.Println("  POST   /register/        - Create an account")
	log.Println("  POST   /login/           - Obtain access + refresh tokens")
	log.Println("  POST   /token/refresh/   - Refresh access token")
	log.Println("  GET    /tasks/           - List tasks (?search= &ordering= &page=)")
	log.Println("  POST   /tasks/create/    - Create a task")
	log.Println("  PUT    /tasks/{id}/      - Update a task (partial allowed)")
	log.Println("  DELETE /tasks/{id}/      - Delete a task")
	log.Println("  GET    /health           - Health check")
	log.Println("")
	log.Println("Web UI (http://localhost:8080):")
	log.Println("  /login/ /register/ /tasks/ ... session-authenticated pages")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
