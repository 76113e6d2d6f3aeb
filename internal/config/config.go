package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"

	"github.com/xxxsen/foliochat/internal/model"
	"github.com/xxxsen/foliochat/internal/rag"
)

type Config struct {
	Port          int               `json:"port"`
	LogConfig     logger.LogConfig  `json:"log_config"`
	CORSAllowlist []string          `json:"cors_allowlist"`
	AI            AIConfig          `json:"ai"`
	Embedding     EmbeddingConfig   `json:"embedding"`
	VectorStore   VectorStoreConfig `json:"vector_store"`
	Retrieval     RetrievalConfig   `json:"retrieval"`
	Pills         PillsConfig       `json:"pills"`
	Profile       ProfileConfig     `json:"profile"`
}

type AIConfig struct {
	Provider         string                 `json:"provider"`
	Model            string                 `json:"model"`
	Temperature      *float32               `json:"temperature"`
	Timeout          int                    `json:"timeout"`
	StructuredOutput bool                   `json:"structured_output"`
	Data             map[string]interface{} `json:"data"`
}

type EmbeddingConfig struct {
	Provider string                 `json:"provider"`
	Model    string                 `json:"model"`
	TaskType string                 `json:"task_type"`
	Timeout  int                    `json:"timeout"`
	Data     map[string]interface{} `json:"data"`
}

type VectorStoreConfig struct {
	Type          string                 `json:"type"`
	ScorePolarity model.ScorePolarity    `json:"score_polarity"`
	Migrate       bool                   `json:"migrate"`
	Data          map[string]interface{} `json:"data"`
}

type RetrievalConfig struct {
	DefaultMatchCount int            `json:"default_match_count"`
	MatchCount        map[string]int `json:"match_count"`
}

// MatchCountFor returns the number of fragments to request for an intent.
func (r RetrievalConfig) MatchCountFor(kind model.IntentKind) int {
	if n, ok := r.MatchCount[string(kind)]; ok && n > 0 {
		return n
	}
	return r.DefaultMatchCount
}

type PillsConfig struct {
	PromptPills bool           `json:"prompt_pills"`
	Limits      rag.PillLimits `json:"limits"`
}

type ProfileConfig struct {
	FileStore *FileStoreConfig `json:"file_store"`
	Key       string           `json:"key"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	defaultPort        = 8080
	defaultTemperature = float32(0.2)
	defaultMatchCount  = 8
	defaultProfileKey  = "profile.yaml"
)

// secretEnv maps provider/store names to the environment variables that
// fill their data fields when the config file leaves them empty.
var secretEnv = map[string]map[string]string{
	"openai":     {"api_key": "OPENAI_API_KEY", "base_url": "OPENAI_BASE_URL"},
	"gemini":     {"api_key": "GEMINI_API_KEY"},
	"openrouter": {"api_key": "OPENROUTER_API_KEY"},
	"pgvector":   {"dsn": "DATABASE_URL"},
	"qdrant":     {"url": "QDRANT_URL", "api_key": "QDRANT_API_KEY"},
}

// LoadEnv reads KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(os.Getenv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize(getenv func(string) string) error {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("port out of range: %d", cfg.Port)
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}

	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultChatModel(cfg.AI.Provider)
	}
	if cfg.AI.Temperature == nil {
		t := defaultTemperature
		cfg.AI.Temperature = &t
	}
	if *cfg.AI.Temperature < 0 || *cfg.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be within [0, 2]")
	}
	if cfg.AI.Timeout < 0 || cfg.Embedding.Timeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	cfg.AI.Data = overlayEnv(cfg.AI.Provider, cfg.AI.Data, getenv)

	cfg.Embedding.Provider = strings.ToLower(strings.TrimSpace(cfg.Embedding.Provider))
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = defaultEmbeddingProvider(cfg.AI.Provider)
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaultEmbeddingModel(cfg.Embedding.Provider)
	}
	if cfg.Embedding.TaskType == "" && cfg.Embedding.Provider == "gemini" {
		cfg.Embedding.TaskType = "RETRIEVAL_QUERY"
	}
	if cfg.Embedding.Data == nil && cfg.Embedding.Provider == cfg.AI.Provider {
		cfg.Embedding.Data = make(map[string]interface{}, len(cfg.AI.Data))
		for k, v := range cfg.AI.Data {
			cfg.Embedding.Data[k] = v
		}
	}
	cfg.Embedding.Data = overlayEnv(cfg.Embedding.Provider, cfg.Embedding.Data, getenv)

	cfg.VectorStore.Type = strings.ToLower(strings.TrimSpace(cfg.VectorStore.Type))
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "pgvector"
	}
	if cfg.VectorStore.ScorePolarity == "" {
		cfg.VectorStore.ScorePolarity = defaultPolarity(cfg.VectorStore.Type)
	}
	if !cfg.VectorStore.ScorePolarity.Valid() {
		return fmt.Errorf("vector_store.score_polarity must be distance or similarity")
	}
	cfg.VectorStore.Data = overlayEnv(cfg.VectorStore.Type, cfg.VectorStore.Data, getenv)

	if cfg.Retrieval.DefaultMatchCount == 0 {
		cfg.Retrieval.DefaultMatchCount = defaultMatchCount
	}
	if cfg.Retrieval.DefaultMatchCount < 0 {
		return fmt.Errorf("retrieval.default_match_count must be positive")
	}
	if cfg.Retrieval.MatchCount == nil {
		cfg.Retrieval.MatchCount = map[string]int{}
	}
	for kind, n := range defaultMatchCounts() {
		if _, ok := cfg.Retrieval.MatchCount[kind]; !ok {
			cfg.Retrieval.MatchCount[kind] = n
		}
	}
	for kind, n := range cfg.Retrieval.MatchCount {
		if n < 0 {
			return fmt.Errorf("retrieval.match_count.%s must not be negative", kind)
		}
	}

	cfg.Pills.Limits = withDefaultLimits(cfg.Pills.Limits)

	if cfg.Profile.FileStore != nil && cfg.Profile.Key == "" {
		cfg.Profile.Key = defaultProfileKey
	}
	return nil
}

func overlayEnv(name string, data map[string]interface{}, getenv func(string) string) map[string]interface{} {
	if data == nil {
		data = map[string]interface{}{}
	}
	for field, env := range secretEnv[name] {
		if v, ok := data[field].(string); ok && strings.TrimSpace(v) != "" {
			continue
		}
		if v := strings.TrimSpace(getenv(env)); v != "" {
			data[field] = v
		}
	}
	return data
}

func defaultChatModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.0-flash"
	case "openrouter":
		return "openai/gpt-4.1-mini"
	}
	return "gpt-4.1-mini"
}

// defaultEmbeddingProvider follows the chat provider; openrouter has no
// embeddings API.
func defaultEmbeddingProvider(chat string) string {
	if chat == "openrouter" {
		return "openai"
	}
	return chat
}

func defaultEmbeddingModel(provider string) string {
	if provider == "gemini" {
		return "text-embedding-004"
	}
	return "text-embedding-3-small"
}

func defaultPolarity(storeType string) model.ScorePolarity {
	if storeType == "qdrant" {
		return model.PolaritySimilarity
	}
	return model.PolarityDistance
}

func defaultMatchCounts() map[string]int {
	return map[string]int{
		string(model.IntentJourney):       12,
		string(model.IntentListDocuments): 16,
	}
}

func withDefaultLimits(l rag.PillLimits) rag.PillLimits {
	def := rag.DefaultPillLimits()
	if l.Default <= 0 {
		l.Default = def.Default
	}
	if l.ListDocuments <= 0 {
		l.ListDocuments = def.ListDocuments
	}
	if l.Contact <= 0 {
		l.Contact = def.Contact
	}
	if l.GitHub <= 0 {
		l.GitHub = def.GitHub
	}
	if l.Prompt <= 0 {
		l.Prompt = def.Prompt
	}
	return l
}
