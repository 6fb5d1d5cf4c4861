package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/deusflow/topicdigest/internal/app"
	"github.com/deusflow/topicdigest/internal/cache"
	"github.com/deusflow/topicdigest/internal/config"
	"github.com/deusflow/topicdigest/internal/feeds"
	"github.com/deusflow/topicdigest/internal/fetcher"
	"github.com/deusflow/topicdigest/internal/gemini"
	"github.com/deusflow/topicdigest/internal/logger"
	"github.com/deusflow/topicdigest/internal/mailer"
	"github.com/deusflow/topicdigest/internal/metrics"
	"github.com/deusflow/topicdigest/internal/newsapi"
	"github.com/deusflow/topicdigest/internal/ratelimit"
	"github.com/deusflow/topicdigest/internal/rss"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	reader := bufio.NewReader(os.Stdin)

	topic := promptLine(reader, "Enter a topic keyword: ")
	if topic == "" {
		fmt.Fprintln(os.Stderr, "No topic provided. Exiting.")
		os.Exit(1)
	}
	apiCount := promptCount(reader, fmt.Sprintf("Number of search articles to fetch (default %d): ", cfg.DefaultCount), cfg.DefaultCount)
	perFeedCount := promptCount(reader, fmt.Sprintf("Feed items per feed to keep (default %d): ", cfg.DefaultCount), cfg.DefaultCount)

	ctx := context.Background()

	sources, err := feeds.Load(cfg.FeedsConfigPath)
	if err != nil {
		logger.Warn("feeds config not loaded, using built-in defaults", "path", cfg.FeedsConfigPath, "error", err)
		sources = feeds.Defaults()
	}

	budget := ratelimit.NewBudget(cfg.MaxLLMRequests)
	verdicts := cache.New()
	intel, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, budget, verdicts, cfg.VerdictTTL)
	if err != nil {
		log.Fatalf("language model client: %v", err)
	}
	defer intel.Close()

	search := newsapi.NewClient(cfg.NewsAPIEndpoint, cfg.NewsAPIKey, cfg.RequestTimeout)
	orchestrator := fetcher.New(rss.NewFetcher(cfg.FeedTimeout), cfg.FeedTimeout)

	var sender app.Sender
	if cfg.MailEnabled() {
		sender = mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	}

	a := app.New(cfg, sources, search, orchestrator, intel, sender)

	d, err := a.Run(ctx, topic, apiCount, perFeedCount)
	if err != nil {
		if errors.Is(err, app.ErrNoArticles) {
			fmt.Fprintf(os.Stderr, "No articles found for '%s'.\n", topic)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println()
	fmt.Print(d.RenderConsole())
	fmt.Printf("Found %d articles for topic '%s' (%d summarized).\n", len(d.Articles), topic, len(d.Summaries))
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

// promptCount reads a positive number, silently falling back to the default
// on empty or invalid input.
func promptCount(reader *bufio.Reader, prompt string, fallback int) int {
	raw := promptLine(reader, prompt)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Printf("Starting monitoring server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("Monitoring server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
