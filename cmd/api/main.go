// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/circlescore/circlescore-backend/internal/auth"
	"github.com/circlescore/circlescore-backend/internal/circles"
	"github.com/circlescore/circlescore-backend/internal/common/database"
	"github.com/circlescore/circlescore-backend/internal/config"
	"github.com/circlescore/circlescore-backend/internal/connections"
	"github.com/circlescore/circlescore-backend/internal/feedback"
	"github.com/circlescore/circlescore-backend/internal/goals"
	"github.com/circlescore/circlescore-backend/internal/insights"
	"github.com/circlescore/circlescore-backend/internal/ratings"
	"github.com/circlescore/circlescore-backend/internal/reveal"
	"github.com/circlescore/circlescore-backend/internal/users"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting CircleScore API")
	log.Println("========================================")

	// 1. Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL")

	// 4. Connect to Redis (optional)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without it", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 5. Run database migrations
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations:", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Circles
	circlesRepo := circles.NewPostgresRepository(db)
	circlesService := circles.NewService(circlesRepo)

	// 7. Users
	var uploadService users.UploadService
	if cfg.UseS3 {
		uploadService, err = users.NewS3UploadService(cfg.S3Bucket, cfg.AWSRegion)
		if err != nil {
			log.Printf("⚠️  Failed to init S3, using local storage: %v", err)
			uploadService = users.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		} else {
			log.Println("   ✅ Using S3 for avatar uploads")
		}
	} else {
		uploadService = users.NewLocalUploadService(cfg.LocalUploadDir, cfg.BaseURL+"/uploads")
		log.Println("   ✅ Using local storage for avatar uploads")
	}

	usersRepo := users.NewPostgresRepository(db)
	usersService := users.NewService(usersRepo, uploadService, cfg.MonthlyTokens, cfg.SearchResultLimit, cfg.AdminPageSize)
	usersHandler := users.NewHandler(usersService)

	// 8. Auth
	authRepo := auth.NewRepository(db, circlesRepo)
	authService := auth.NewService(authRepo, redisClient, &auth.Config{
		JWTSecret:          cfg.JWTSecret,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		BCryptCost:         cfg.BCryptCost,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Authentication system initialized")

	// 9. Ratings
	ratingsRepo := ratings.NewPostgresRepository(db)
	ratingsService := ratings.NewService(ratingsRepo, circlesService, cfg.PrivacyThreshold)
	ratingsHandler := ratings.NewHandler(ratingsService)

	// 10. Reveal requests
	revealRepo := reveal.NewPostgresRepository(db)
	revealService := reveal.NewService(revealRepo)
	revealHandler := reveal.NewHandler(revealService)

	// 11. Connections
	var emailProvider connections.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = connections.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Println("   ✅ Using SendGrid for invite emails")
	case "smtp":
		emailProvider = connections.NewSMTPEmailProvider(
			cfg.SMTPHost,
			fmt.Sprintf("%d", cfg.SMTPPort),
			cfg.SMTPUser,
			cfg.SMTPPassword,
			cfg.EmailFrom,
		)
		log.Println("   ✅ Using SMTP for invite emails")
	default:
		emailProvider = connections.NewMockEmailProvider()
		log.Println("   ⚠️  Using mock email provider (development mode)")
	}

	var smsProvider connections.SMSProvider
	if cfg.SMSProvider == "twilio" {
		smsProvider = connections.NewTwilioSMSProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
		log.Println("   ✅ Using Twilio for invite SMS")
	} else {
		smsProvider = connections.NewMockSMSProvider()
		log.Println("   ⚠️  Using mock SMS provider (development mode)")
	}

	connectionsRepo := connections.NewPostgresRepository(db)
	connectionsService := connections.NewService(connectionsRepo, circlesService, emailProvider, smsProvider, cfg.SuggestionLimit)
	connectionsHandler := connections.NewHandler(connectionsService)

	// 12. Family goals
	goalsRepo := goals.NewPostgresRepository(db)
	goalsService := goals.NewService(goalsRepo, circlesService, cfg.GoalDurationDays)
	goalsHandler := goals.NewHandler(goalsService)

	sweeper := goals.NewSweeper(goalsRepo, cfg.GoalSweepInterval)
	go sweeper.Run(context.Background())
	log.Println("✅ Goal expiry sweeper started")

	// 13. Insights
	chatClient := insights.NewOpenAIClient(cfg.OpenAIAPIKey)
	if chatClient == nil {
		log.Println("   ⚠️  OpenAI key not configured, trait summaries use fallback wording")
	}
	insightsService := insights.NewService(chatClient, cfg.OpenAIModel, redisClient, cfg.InsightCacheTTL, ratingsService, usersService)
	insightsHandler := insights.NewHandler(insightsService)

	// 14. App feedback
	feedbackRepo := feedback.NewRepository(db)
	feedbackService := feedback.NewService(feedbackRepo)
	feedbackHandler := feedback.NewHandler(feedbackService)

	// 15. Routes
	router := mux.NewRouter()

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.RegisterRoutes(router, authHandler, authMiddleware)
	users.RegisterRoutes(router, usersHandler, authMiddleware)
	ratings.RegisterRoutes(router, ratingsHandler, authMiddleware)
	reveal.RegisterRoutes(router, revealHandler, authMiddleware)
	connections.RegisterRoutes(router, connectionsHandler, authMiddleware)
	goals.RegisterRoutes(router, goalsHandler, authMiddleware)
	insights.RegisterRoutes(router, insightsHandler, authMiddleware)
	feedback.RegisterRoutes(router, feedbackHandler, authMiddleware)
	log.Println("✅ Routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 16. Start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on http://localhost%s (%s)", srv.Addr, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
