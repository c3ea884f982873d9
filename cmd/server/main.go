package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/minichat/minichat/internal/config"
	"github.com/minichat/minichat/internal/domain"
	"github.com/minichat/minichat/internal/handlers"
	"github.com/minichat/minichat/internal/middleware"
	"github.com/minichat/minichat/internal/repository/conversation"
	"github.com/minichat/minichat/internal/repository/message"
	"github.com/minichat/minichat/internal/services"
	"github.com/minichat/minichat/internal/services/ai"
	chatservice "github.com/minichat/minichat/internal/services/chat"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("minichat")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.Conversation{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	conversationRepo := conversation.NewConversationRepository(db)
	messageRepo := message.NewMessageRepository(db)

	// --- Services ---
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.OpenAIAPIKey
	aiConfig.BaseURL = cfg.OpenAIBaseURL
	aiConfig.Model = cfg.ChatModel
	aiConfig.MaxTokens = cfg.MaxTokens

	provider, err := ai.NewOpenAIProvider(aiConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize AI provider: %v", err)
	}

	chatConfig := chatservice.DefaultConfig()
	chatConfig.SystemPrompt = cfg.SystemPrompt

	chatService, err := services.NewChatService(conversationRepo, messageRepo, provider, chatConfig, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	// --- Handlers ---
	chatHandler, err := handlers.NewChatHandler(chatService, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Handler: %v", err)
	}
	markdownHandler := handlers.NewMarkdownHandler()
	pageHandler := handlers.NewPageHandler()

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("OK")) }).Methods("GET")
	r.HandleFunc("/", pageHandler.ShowChatPage).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/conversations", chatHandler.ListConversations).Methods("GET")
	api.HandleFunc("/conversations/{id}/messages", chatHandler.GetConversationMessages).Methods("GET")
	api.HandleFunc("/conversations/{id}", chatHandler.DeleteConversation).Methods("DELETE")
	api.HandleFunc("/chat", chatHandler.StreamChat).Methods("POST")
	api.HandleFunc("/markdown", markdownHandler.Render).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageHandler.ShowErrorPage(w, "404", "Page Not Found", "The page you are looking for does not exist.")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageHandler.ShowErrorPage(w, "405", "Method Not Allowed", "The method is not allowed for this resource.")
	})

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Minichat starting on port %s", port)
	log.Printf("Chat interface: http://localhost%s/", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
