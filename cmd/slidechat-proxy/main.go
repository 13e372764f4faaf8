package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slidechat/config"
	"slidechat/proxy"
)

func main() {
	log.Println("Starting slidechat proxy...")

	cfg := config.LoadProxyConfig()
	if !cfg.Configured() {
		log.Println("⚠ KIBANA_URL or ELASTICSEARCH_API_KEY not set; chat requests will fail until they are")
	} else {
		log.Printf("✓ Forwarding to %s%s (agent %s)", cfg.KibanaURL, proxy.ConversePath, cfg.AgentID)
	}

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     proxy.NewRouter(proxy.NewHandler(cfg, nil)),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: responses stream for as long as the agent runs
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ slidechat proxy ready on http://localhost:%s%s", cfg.Port, proxy.ChatPath)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
