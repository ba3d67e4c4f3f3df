package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/Maheen0312/realtime-code-collab/internal/api"
	"github.com/Maheen0312/realtime-code-collab/internal/assistant"
	"github.com/Maheen0312/realtime-code-collab/internal/routers"
	"github.com/Maheen0312/realtime-code-collab/internal/session"
	"github.com/Maheen0312/realtime-code-collab/internal/store"
	"github.com/Maheen0312/realtime-code-collab/internal/utils"
)

var (
	defaultPort         = "5000"
	defaultRedisAddr    = "redis:6379"
	defaultAssistantURL = "http://assistant:11434"

	listenAndServe = http.ListenAndServe
	exit           = os.Exit
	exitFunc       = defaultExit
)

func defaultExit(err error) {
	log.Println(err)
	exit(1)
}

func run(ctx context.Context) error {
	logger := utils.NewLogger()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = defaultRedisAddr
	}
	assistantURL := os.Getenv("ASSISTANT_URL")
	if assistantURL == "" {
		assistantURL = defaultAssistantURL
	}

	registry := session.NewRegistry(logger, session.DefaultGracePeriod)
	registry.StartSweeper(ctx, session.DefaultSweepInterval, session.DefaultIdleTTL)

	roomStore := store.New(redisAddr)
	ai := assistant.New(assistantURL)

	h := api.NewHandlers(logger, registry, roomStore, ai)
	router := routers.New(h)

	addr := ":" + port
	logger.Info("collab server listening", "addr", addr)
	return listenAndServe(addr, router)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		exitFunc(err)
	}
}
