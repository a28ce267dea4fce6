// Package httpapi exposes the chat, upload, index and repository
// operations as a JSON API.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/repoqa-labs/repoqa-cli/internal/logger"
)

// loggingMiddleware logs request details and latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("%s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// corsMiddleware adds CORS headers for development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter creates and configures the HTTP router.
func NewRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	r.HandleFunc("/api/chat", handler.HandleChat).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/upload", handler.HandleUpload).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/search", handler.HandleSearch).Methods("POST", "OPTIONS")

	r.HandleFunc("/api/rag/stats", handler.HandleRAGStats).Methods("GET")
	r.HandleFunc("/api/rag/clear", handler.HandleRAGClear).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/rag/documents/{id}", handler.HandleDeleteDocument).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/api/github/connect", handler.HandleGithubConnect).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/github/info", handler.HandleGithubInfo).Methods("GET")
	r.HandleFunc("/api/github/prs", handler.HandleGithubPRs).Methods("GET")
	r.HandleFunc("/api/github/issues", handler.HandleGithubIssues).Methods("GET")
	r.HandleFunc("/api/github/workflows", handler.HandleGithubWorkflows).Methods("GET")
	r.HandleFunc("/api/github/runs", handler.HandleGithubRuns).Methods("GET")
	r.HandleFunc("/api/github/analyze", handler.HandleGithubAnalyze).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/github/artifact/{runID}", handler.HandleGithubArtifact).Methods("GET")

	r.HandleFunc("/api/reports", handler.HandleReportList).Methods("GET")
	r.HandleFunc("/api/reports/generate", handler.HandleReportGenerate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/reports/download/{filename}", handler.HandleReportDownload).Methods("GET")

	r.HandleFunc("/health", handler.HandleHealth).Methods("GET")

	return r
}
