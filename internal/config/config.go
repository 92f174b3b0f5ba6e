package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ProviderConfig points at an OpenAI-compatible API used for both the
// embedding model and the chat model.
type ProviderConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

type StoreConfig struct {
	Backend      string `yaml:"backend"` // "chromem" or "postgres"
	DataDir      string `yaml:"data_dir"`
	IndexDir     string `yaml:"index_dir"`
	Collection   string `yaml:"collection"`
	DSN          string `yaml:"dsn"`
	EmbeddingDim int    `yaml:"embedding_dim"`
	Debug        bool   `yaml:"debug"`
}

type RAGConfig struct {
	TopK         int `yaml:"top_k"`
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	RAG      RAGConfig      `yaml:"rag"`
}

const (
	defaultChunkSize    = 800
	defaultChunkOverlap = 150
	defaultTopK         = 5
	defaultEmbeddingDim = 1536
)

// LoadConfig reads the YAML config at path, fills in defaults, applies
// environment overrides and makes sure the data directories exist. A
// missing file yields a pure-default config.
func LoadConfig(path string) (*Config, error) {
	// a .env next to the binary is the usual place for the API key
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := ensureDirs(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Provider.ChatModel == "" {
		cfg.Provider.ChatModel = "gpt-4o-mini"
	}
	if cfg.Provider.EmbeddingModel == "" {
		cfg.Provider.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "chromem"
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = "data"
	}
	if cfg.Store.IndexDir == "" {
		cfg.Store.IndexDir = "data/vectordb"
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = "documents"
	}
	if cfg.Store.EmbeddingDim == 0 {
		cfg.Store.EmbeddingDim = defaultEmbeddingDim
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = defaultTopK
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCCHAT_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("DOCCHAT_DATA_DIR"); v != "" {
		cfg.Store.DataDir = v
	}
	if v := os.Getenv("DOCCHAT_INDEX_DIR"); v != "" {
		cfg.Store.IndexDir = v
	}
}

func ensureDirs(cfg *Config) error {
	for _, dir := range []string{cfg.Store.DataDir, cfg.Store.IndexDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
