package main

import (
	"log"
	"net/http"
	"os"

	"mindnest-server/handlers"
	"mindnest-server/middleware"
	"mindnest-server/scheduler"
	"mindnest-server/store"
)

func main() {
	// Initialize store
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./mindnest.db"
	}

	s, err := store.New(dbPath)
	if err != nil {
		// Run degraded: /health stays up and API routes answer 503.
		log.Printf("Failed to initialize database: %v", err)
		s = nil
	} else {
		defer s.Close()
	}

	// Initialize WebSocket hub
	hub := handlers.NewHub(s)
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(s)
	userHandler := handlers.NewUserHandler(s)
	moodHandler := handlers.NewMoodHandler(s, hub)
	journalHandler := handlers.NewJournalHandler(s, hub)
	goalHandler := handlers.NewGoalHandler(s, hub)
	communityHandler := handlers.NewCommunityHandler(s, hub)
	reminderHandler := handlers.NewReminderHandler(s, hub)
	insightsHandler := handlers.NewInsightsHandler(s)
	resourceHandler := handlers.NewResourceHandler()

	auth := middleware.NewAuth(s)

	// Start reminder scheduler
	if s != nil {
		sched := scheduler.New(s, hub)
		if err := sched.Start(); err != nil {
			log.Printf("Failed to start reminder scheduler: %v", err)
		} else {
			defer sched.Stop()
		}
	}

	// Create router
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", auth.Require(authHandler.Me))

	// Moods (stats before {id} so the literal segment wins)
	mux.HandleFunc("POST /api/mood", auth.Require(moodHandler.Create))
	mux.HandleFunc("GET /api/mood", auth.Require(moodHandler.List))
	mux.HandleFunc("GET /api/mood/stats", auth.Require(moodHandler.Stats))
	mux.HandleFunc("GET /api/mood/{id}", auth.Require(moodHandler.Get))
	mux.HandleFunc("PUT /api/mood/{id}", auth.Require(moodHandler.Update))
	mux.HandleFunc("DELETE /api/mood/{id}", auth.Require(moodHandler.Delete))

	// Journals
	mux.HandleFunc("POST /api/journal", auth.Require(journalHandler.Create))
	mux.HandleFunc("POST /api/journal/autosave", auth.Require(journalHandler.AutoSave))
	mux.HandleFunc("GET /api/journal", auth.Require(journalHandler.List))
	mux.HandleFunc("GET /api/journal/{id}", auth.Require(journalHandler.Get))
	mux.HandleFunc("PUT /api/journal/{id}", auth.Require(journalHandler.Update))
	mux.HandleFunc("DELETE /api/journal/{id}", auth.Require(journalHandler.Delete))

	// Goals
	mux.HandleFunc("POST /api/goals", auth.Require(goalHandler.Create))
	mux.HandleFunc("GET /api/goals", auth.Require(goalHandler.List))
	mux.HandleFunc("GET /api/goals/{id}", auth.Require(goalHandler.Get))
	mux.HandleFunc("PUT /api/goals/{id}", auth.Require(goalHandler.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", auth.Require(goalHandler.Delete))

	// Community (reads are public, writes require auth)
	mux.HandleFunc("GET /api/community/posts", auth.Optional(communityHandler.GetPosts))
	mux.HandleFunc("GET /api/community/posts/{id}", auth.Optional(communityHandler.GetPost))
	mux.HandleFunc("POST /api/community/posts", auth.Require(communityHandler.CreatePost))
	mux.HandleFunc("POST /api/community/posts/{id}/like", auth.Require(communityHandler.Like))
	mux.HandleFunc("POST /api/community/posts/{id}/comments", auth.Require(communityHandler.AddComment))
	mux.HandleFunc("DELETE /api/community/posts/{id}", auth.Require(communityHandler.DeletePost))

	// Reminders
	mux.HandleFunc("POST /api/reminders", auth.Require(reminderHandler.Create))
	mux.HandleFunc("GET /api/reminders", auth.Require(reminderHandler.List))
	mux.HandleFunc("GET /api/reminders/{id}", auth.Require(reminderHandler.Get))
	mux.HandleFunc("PUT /api/reminders/{id}", auth.Require(reminderHandler.Update))
	mux.HandleFunc("DELETE /api/reminders/{id}", auth.Require(reminderHandler.Delete))

	// User profile
	mux.HandleFunc("GET /api/user/profile", auth.Require(userHandler.GetProfile))
	mux.HandleFunc("PUT /api/user/profile", auth.Require(userHandler.UpdateProfile))
	mux.HandleFunc("PUT /api/user/preferences", auth.Require(userHandler.UpdatePreferences))

	// Insights
	mux.HandleFunc("GET /api/insights/mood-insights", auth.Require(insightsHandler.MoodInsights))
	mux.HandleFunc("GET /api/insights/weekly-report", auth.Require(insightsHandler.WeeklyReport))

	// Resources (public)
	mux.HandleFunc("GET /api/resources", resourceHandler.List)
	mux.HandleFunc("GET /api/resources/categories", resourceHandler.Categories)
	mux.HandleFunc("GET /api/resources/{id}", resourceHandler.Get)

	// Realtime
	mux.HandleFunc("GET /api/ws", hub.HandleWebSocket)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	handler := corsMiddleware(storeGuard(s, mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("MindNest server starting on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

// storeGuard answers 503 on every /api route while the database is down
// so clients see a uniform failure instead of per-handler panics.
func storeGuard(s *store.Store, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s == nil && len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/" {
			http.Error(w, "Database not connected", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := os.Getenv("CLIENT_URL")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if origin != "*" {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
