package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the GeoInsight server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Providers  ProvidersConfig
	AI         AIConfig
	Scoring    ScoringConfig
	Analysis   AnalysisConfig
	Similarity SimilarityConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// ProvidersConfig configures the external data providers an analysis
// depends on: amenity lookups, map tiles, and image embeddings.
type ProvidersConfig struct {
	OSM   OSMConfig
	Tiles TilesConfig
	Embed EmbedConfig
}

type OSMConfig struct {
	OverpassURL  string
	NominatimURL string
	Timeout      time.Duration
	CacheTTL     time.Duration
}

type TilesConfig struct {
	BaseURL string
	Timeout time.Duration
	Zoom    int
}

type EmbedConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AIConfig struct {
	Provider         string
	InferenceTimeout time.Duration
	Ollama           OllamaConfig
	OpenAI           OpenAIConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

// ScoringConfig tunes the scoring algorithms. Defaults match the
// documented behavior; override only for experimentation.
type ScoringConfig struct {
	WalkCutoffM        float64
	WalkMaxPerCategory int
	HueMinDeg          float64
	HueMaxDeg          float64
	SatMin             float64
	ValMin             float64
	IRRGuess           float64
	IRRTolerance       float64
	IRRMaxIter         int
}

type AnalysisConfig struct {
	SubtaskTimeout time.Duration
	StatusTTL      time.Duration
}

type SimilarityConfig struct {
	Backend          string
	Dimension        int
	DefaultThreshold float64
	DefaultLimit     int
}

var validAIProviders = map[string]bool{
	"ollama": true,
	"openai": true,
	"none":   true,
}

var validSimilarityBackends = map[string]bool{
	"postgres": true,
	"memory":   true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("GEOINSIGHT_PORT", 8080),
			Env:  envString("GEOINSIGHT_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Providers: ProvidersConfig{
			OSM: OSMConfig{
				OverpassURL:  envString("OSM_OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
				NominatimURL: envString("OSM_NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
				Timeout:      envDuration("OSM_TIMEOUT", 30*time.Second),
				CacheTTL:     envDuration("OSM_CACHE_TTL", 6*time.Hour),
			},
			Tiles: TilesConfig{
				BaseURL: envString("TILES_BASE_URL", "https://tile.openstreetmap.org"),
				Timeout: envDuration("TILES_TIMEOUT", 30*time.Second),
				Zoom:    envInt("TILES_ZOOM", 16),
			},
			Embed: EmbedConfig{
				BaseURL: os.Getenv("EMBED_BASE_URL"),
				Timeout: envDuration("EMBED_TIMEOUT", 60*time.Second),
			},
		},
		AI: AIConfig{
			Provider:         envString("AI_PROVIDER", "none"),
			InferenceTimeout: envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 60*time.Second),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			OpenAI: OpenAIConfig{
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Model:  envString("OPENAI_MODEL", "gpt-4"),
			},
		},
		Scoring: ScoringConfig{
			WalkCutoffM:        envFloat("WALK_CUTOFF_M", 1600),
			WalkMaxPerCategory: envInt("WALK_MAX_PER_CATEGORY", 3),
			HueMinDeg:          envFloat("VEGETATION_HUE_MIN_DEG", 60),
			HueMaxDeg:          envFloat("VEGETATION_HUE_MAX_DEG", 180),
			SatMin:             envFloat("VEGETATION_SAT_MIN", 0.10),
			ValMin:             envFloat("VEGETATION_VAL_MIN", 0.20),
			IRRGuess:           envFloat("IRR_GUESS", 0.10),
			IRRTolerance:       envFloat("IRR_TOLERANCE", 1e-7),
			IRRMaxIter:         envInt("IRR_MAX_ITER", 100),
		},
		Analysis: AnalysisConfig{
			SubtaskTimeout: envDuration("ANALYSIS_SUBTASK_TIMEOUT", 2*time.Minute),
			StatusTTL:      envDuration("ANALYSIS_STATUS_TTL", 24*time.Hour),
		},
		Similarity: SimilarityConfig{
			Backend:          envString("SIMILARITY_BACKEND", "postgres"),
			Dimension:        envInt("SIMILARITY_DIMENSION", 512),
			DefaultThreshold: envFloat("SIMILARITY_DEFAULT_THRESHOLD", 0.70),
			DefaultLimit:     envInt("SIMILARITY_DEFAULT_LIMIT", 10),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if !isHTTPURL(c.Providers.OSM.OverpassURL) {
		return fmt.Errorf("OSM_OVERPASS_URL must start with http:// or https://, got %q", c.Providers.OSM.OverpassURL)
	}
	if !isHTTPURL(c.Providers.Tiles.BaseURL) {
		return fmt.Errorf("TILES_BASE_URL must start with http:// or https://, got %q", c.Providers.Tiles.BaseURL)
	}
	if c.Providers.Embed.BaseURL != "" && !isHTTPURL(c.Providers.Embed.BaseURL) {
		return fmt.Errorf("EMBED_BASE_URL must start with http:// or https://, got %q", c.Providers.Embed.BaseURL)
	}

	if !validAIProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of ollama, openai, none; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}

	if !validSimilarityBackends[c.Similarity.Backend] {
		return fmt.Errorf("SIMILARITY_BACKEND must be one of postgres, memory; got %q", c.Similarity.Backend)
	}
	if c.Similarity.Dimension <= 0 {
		return fmt.Errorf("SIMILARITY_DIMENSION must be positive, got %d", c.Similarity.Dimension)
	}
	if c.Similarity.DefaultThreshold < 0 || c.Similarity.DefaultThreshold >= 1 {
		return fmt.Errorf("SIMILARITY_DEFAULT_THRESHOLD must be in [0, 1), got %v", c.Similarity.DefaultThreshold)
	}

	if c.Scoring.WalkCutoffM <= 0 {
		return fmt.Errorf("WALK_CUTOFF_M must be positive, got %v", c.Scoring.WalkCutoffM)
	}
	if c.Scoring.IRRMaxIter <= 0 {
		return fmt.Errorf("IRR_MAX_ITER must be positive, got %d", c.Scoring.IRRMaxIter)
	}

	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
