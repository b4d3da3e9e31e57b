// Package cli implements the habit-agent CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/habit-agent/internal/agent"
	"github.com/rcliao/habit-agent/internal/config"
	"github.com/rcliao/habit-agent/internal/embedding"
	"github.com/rcliao/habit-agent/internal/llm"
	"github.com/rcliao/habit-agent/internal/retrieval"
	"github.com/rcliao/habit-agent/internal/store"
)

var (
	dbPath     string
	configPath string
	userFlag   string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "habit-agent",
	Short: "Conversational gym and food tracker",
	Long:  "A chat-style habit tracker. Log workouts and meals in plain text; ask about your recent activity and trends. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $HABIT_AGENT_DB or ~/.habit-agent/habit.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config path (default: $HABIT_AGENT_CONFIG or ~/.habit-agent/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "default", "User whose log to operate on")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("HABIT_AGENT_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".habit-agent", "habit.db")
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("HABIT_AGENT_CONFIG"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".habit-agent", "config.yaml")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

func newEmbedder(cfg *config.Config) embedding.Embedder {
	var inner embedding.Embedder
	switch cfg.Embeddings.Provider {
	case "ollama":
		inner = embedding.NewOllamaEmbedder(cfg.Embeddings.BaseURL, cfg.Embeddings.Model)
	case "openai":
		inner = embedding.NewOpenAIEmbedder(cfg.Embeddings.BaseURL, os.Getenv("OPENAI_API_KEY"), cfg.Embeddings.Model, cfg.Embeddings.Dimension)
	default:
		inner = embedding.NewLocalEmbedder(cfg.Embeddings.Dimension)
	}
	cached, err := embedding.NewCachedEmbedder(inner)
	if err != nil {
		return inner
	}
	return cached
}

func newGenerator(cfg *config.Config) llm.Generator {
	if cfg.LLM.Provider == "none" {
		return nil
	}
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil
	}
	return llm.NewAnthropic(key, cfg.LLM.Model, cfg.LLM.MaxTokens)
}

// newAgent wires store, retrieval, and generation from config. The caller
// owns the returned store and must close it.
func newAgent() (*agent.Agent, *store.SQLiteStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	s, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	engine := retrieval.NewEngine(s, newEmbedder(cfg), retrieval.Mode(cfg.Retrieval.Mode))
	a := agent.New(s, engine, newGenerator(cfg), agent.Options{
		System: cfg.LLM.System,
		K:      cfg.Retrieval.K,
		Window: time.Duration(cfg.Retrieval.WindowDays) * 24 * time.Hour,
	})
	return a, s, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
