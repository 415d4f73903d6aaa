package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"tripchat/ai"
	"tripchat/gateway"
	"tripchat/internal"
	"tripchat/moderation"
	"tripchat/observability"
	"tripchat/repositories"
	"tripchat/runtime"
	"tripchat/runtime/workers"
	"tripchat/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components and manages the server lifecycle.
// Returning an error instead of exiting keeps the defers (database
// close) running and the wiring testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Moderation
	wordData, err := moderation.LoadWordlists()
	if err != nil {
		return fmt.Errorf("wordlists loading failed: %w", err)
	}
	censorRune, err := config.CensorRune()
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(wordData.Words, censorRune)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}

	// 4. Supervision & Orchestration
	sup := workers.NewSupervisor(log)
	registry := runtime.NewRegistry()
	roomRepository := repositories.NewRoomRepository(db, log)
	messageRepository := repositories.NewMessageRepository(db, log)
	threadRepository := repositories.NewThreadRepository(db, log)

	orchestrator := runtime.NewOrchestrator(
		log, sup, registry,
		roomRepository, messageRepository, threadRepository,
		moderator, config.BufferSize, config.SinkTimeout,
	)

	retry := services.RetryPolicy{Attempts: config.RetryAttempts, Backoff: config.RetryBackoff}
	roomService := services.NewRoomService(orchestrator, log)
	messageService := services.NewMessageService(orchestrator, messageRepository, retry, config.MaxContentLength, log)

	// 5. AI response orchestration
	responder := ai.NewResponder(
		ai.NewMockBackend(), messageService, retry,
		ai.Config{
			ContextWindowSize: config.ContextWindowSize,
			MinConfidence:     config.MinConfidence,
			BackendTimeout:    config.BackendTimeout,
		}, log)
	responderWorker := ai.NewResponderWorker(responder, roomService, messageService, config.BufferSize, log)

	stats := observability.NewStats()
	orchestrator.AddSinks(observability.NewStatsSink(stats), responderWorker.TriggerSink())
	sup.Add(responderWorker)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Start the engine
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := orchestrator.Start(ctx); err != nil {
			log.Error("Orchestrator stopped with error", "error", err)
		}
	}()

	// 8. HTTP server with the websocket gateway
	gw := gateway.NewGateway(ctx,
		gateway.GatewayConfig{
			PoolCapacity:         config.PoolCapacity,
			ConnectionBufferSize: config.ConnectionBufferSize,
			RateLimitEvents:      config.RateLimitEvents,
			RateLimitWindow:      config.RateLimitWindow,
			HeartbeatInterval:    config.HeartbeatInterval,
			HeartbeatMisses:      config.HeartbeatMisses,
		},
		[]byte(config.JWTSecret), registry, roomService, messageService, stats, log)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: gateway.NewRouter(gw, stats),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting websocket gateway", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 9. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	orchestrator.Stop()
	<-engineDone
	log.Info("Program stopped cleanly")

	return nil
}
