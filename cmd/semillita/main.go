package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/semillita/semillita/internal/database"
	"github.com/semillita/semillita/internal/email"
	"github.com/semillita/semillita/internal/logging"
	"github.com/semillita/semillita/internal/media"
	"github.com/semillita/semillita/internal/push"
	"github.com/semillita/semillita/internal/seed"
	"github.com/semillita/semillita/internal/server"
	"github.com/semillita/semillita/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("SEMILLITA_LOG_LEVEL"))

	port := os.Getenv("SEMILLITA_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("SEMILLITA_DB_PATH")
	if dbPath == "" {
		dbPath = "semillita.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := seed.Run(store.NewEmotionStore(db), store.NewAchievementStore(db), store.NewRewardStore(db)); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	consentSecret := []byte(os.Getenv("SEMILLITA_CONSENT_SECRET"))
	if len(consentSecret) == 0 {
		// Without a fixed secret, consent links stop working across restarts.
		consentSecret = make([]byte, 32)
		if _, err := rand.Read(consentSecret); err != nil {
			log.Fatalf("failed to generate consent secret: %v", err)
		}
		logger.Warn("SEMILLITA_CONSENT_SECRET not set, using a random per-process secret")
	}

	baseURL := os.Getenv("SEMILLITA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}
	emailClient := email.NewClient(
		os.Getenv("SEMILLITA_POSTMARK_TOKEN"),
		os.Getenv("SEMILLITA_FROM_EMAIL"),
		baseURL,
	)

	cfg := server.Config{
		ConsentSecret: consentSecret,
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("SEMILLITA_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("SEMILLITA_VAPID_PRIVATE_KEY"),
			Subscriber:      os.Getenv("SEMILLITA_VAPID_SUBSCRIBER"),
		},
		Media: media.Config{
			Endpoint:  os.Getenv("SEMILLITA_S3_ENDPOINT"),
			Bucket:    os.Getenv("SEMILLITA_S3_BUCKET"),
			Region:    os.Getenv("SEMILLITA_S3_REGION"),
			AccessKey: os.Getenv("SEMILLITA_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("SEMILLITA_S3_SECRET_KEY"),
		},
	}

	srv := server.New(db, emailClient, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.PushScheduler().Start(ctx)
	defer srv.PushScheduler().Stop()

	// Expired sessions and stale rate-limit windows pile up slowly; sweep
	// them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Debug("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Semillita running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
