package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	log.SetPrefix("calgemini-api: ")

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	cfg := loadConfig()
	ctx := context.Background()

	// Postgres when DB_URL is set, otherwise a local sqlite file.
	var s store
	if cfg.DBURL != "" {
		pg, err := newPGStore(ctx, cfg.DBURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pg.close()
		log.Println("DB pool ready!")
		s = pg
	} else {
		local, err := newLocalStore(cfg.LocalDBPath)
		if err != nil {
			log.Fatalf("Unable to open local database: %v", err)
		}
		log.Printf("DB_URL not set, using local database %s", cfg.LocalDBPath)
		s = local
	}

	h := newHandler(s, newInferenceClient(cfg))
	h.appOrigin = cfg.AppOrigin
	if cfg.OpenAIAPIKey == "" {
		log.Println("OPENAI_API_KEY not set, inference endpoints will return 503")
	}
	if cfg.TTSEnabled {
		sp, err := newCloudSpeaker(ctx)
		if err != nil {
			log.Fatalf("Failed to create Text-to-Speech client: %v", err)
		}
		defer sp.close()
		h.speaker = sp
	}
	if cfg.StripeSecretKey != "" {
		h.billing = newStripeBilling(cfg)
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: corsMiddleware.Handler(router),
	}

	go func() {
		log.Printf("Listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
