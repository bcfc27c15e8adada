package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"mindprint/internal/service"
	"mindprint/internal/transport/rest/handler"
	"mindprint/internal/transport/rest/middleware"
	"mindprint/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService      *service.AuthService
	QuizService      *service.QuizService
	ResultService    *service.ResultService
	AnalyticsService *service.AnalyticsService
	WSHub            *ws.Hub
	Logger           *zap.Logger
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	quizHandler := handler.NewQuizHandler(c.QuizService, c.AnalyticsService)
	resultsHandler := handler.NewResultsHandler(c.ResultService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.QuizService, c.AnalyticsService, c.Logger)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/quiz/join", authHandler.Join).Methods("POST", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/quiz", wsHandler.QuizWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Participant routes
	quizRoutes := v1.NewRoute().Subrouter()
	quizRoutes.Use(authMW.RequireParticipant)

	quizRoutes.HandleFunc("/quiz/start", quizHandler.Start).Methods("POST", "OPTIONS")
	quizRoutes.HandleFunc("/quiz/current", quizHandler.Current).Methods("GET", "OPTIONS")
	quizRoutes.HandleFunc("/quiz/answers", quizHandler.Answer).Methods("POST", "OPTIONS")
	quizRoutes.HandleFunc("/quiz/abandon", quizHandler.Abandon).Methods("POST", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/results/latest", resultsHandler.Latest).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/results/recent", resultsHandler.Recent).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/stats/types", resultsHandler.TypeStats).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
