package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"saasadmin/internal/service"
	"saasadmin/internal/transport/rest/handler"
	"saasadmin/internal/transport/rest/middleware"
	"saasadmin/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	FormService          *service.FormService
	SubmissionService    *service.SubmissionService
	RecalculationService *service.RecalculationService
	WSHub                *ws.Hub
	CORSAllowedOrigins   []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	formHandler := handler.NewFormHandler(c.FormService)
	submissionHandler := handler.NewSubmissionHandler(c.SubmissionService, c.RecalculationService, c.FormService)
	publicHandler := handler.NewPublicHandler(c.FormService, c.SubmissionService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.FormService, c.CORSAllowedOrigins)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSAllowedOrigins))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/public/forms/{publicKey}", publicHandler.GetForm).Methods("GET", "OPTIONS")
	v1.HandleFunc("/public/forms/{publicKey}/preview", publicHandler.Preview).Methods("POST", "OPTIONS")
	v1.HandleFunc("/public/forms/{publicKey}/submissions", publicHandler.Submit).Methods("POST", "OPTIONS")

	// WebSocket routes (public with token in query param)
	v1.HandleFunc("/ws/forms/{formId}", wsHandler.FormWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require admin auth, scoped to the token's organization)
	admin := v1.NewRoute().Subrouter()
	admin.Use(authMW.RequireAdmin)

	admin.HandleFunc("/question-types", formHandler.QuestionTypes).Methods("GET", "OPTIONS")
	admin.HandleFunc("/forms", formHandler.Create).Methods("POST", "OPTIONS")
	admin.HandleFunc("/forms", formHandler.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/forms/{formId}", formHandler.Get).Methods("GET", "OPTIONS")
	admin.HandleFunc("/forms/{formId}", formHandler.Update).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/forms/{formId}", formHandler.Delete).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/publish", formHandler.Publish).Methods("POST", "OPTIONS")

	// Builder routes
	admin.HandleFunc("/forms/{formId}/pages", formHandler.AddPage).Methods("POST", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/pages/{pageId}", formHandler.DeletePage).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/pages/{pageId}/questions", formHandler.AddQuestion).Methods("POST", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/questions/{questionId}", formHandler.DeleteQuestion).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/options/{optionId}/score", formHandler.UpdateOptionScore).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/columns/{columnId}/score", formHandler.UpdateColumnScore).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/rules", formHandler.AddRule).Methods("POST", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/rules/{ruleId}", formHandler.DeleteRule).Methods("DELETE", "OPTIONS")

	// Submission routes
	admin.HandleFunc("/forms/{formId}/submissions", submissionHandler.List).Methods("GET", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/submissions/{submissionId}", submissionHandler.Get).Methods("GET", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/submissions/{submissionId}", submissionHandler.Delete).Methods("DELETE", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/leaderboard", submissionHandler.Leaderboard).Methods("GET", "OPTIONS")
	admin.HandleFunc("/forms/{formId}/recalculate", submissionHandler.Recalculate).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
