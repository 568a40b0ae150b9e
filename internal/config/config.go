package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug bool `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`

	// Corpus location: a local directory or an s3://bucket/prefix URL.
	DocsPath string `envconfig:"DOCS_PATH" default:"./docs"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"800"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"100"`
	MaxResults   int `envconfig:"MAX_RESULTS" default:"5"`
	MaxHistory   int `envconfig:"MAX_HISTORY" default:"2"`

	EmbedTimeout    time.Duration `envconfig:"EMBED_TIMEOUT" default:"30s"`
	GenerateTimeout time.Duration `envconfig:"GENERATE_TIMEOUT" default:"60s"`

	// Interval for the background corpus rescan; zero disables the worker.
	RescanInterval time.Duration `envconfig:"RESCAN_INTERVAL" default:"0"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("STUDYLOOP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasS3() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}
