package app

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/parlatrack/backend/internal/pkg/logger"
	"github.com/parlatrack/backend/internal/utils"
)

type Config struct {
	Port             string  `yaml:"port"`
	TitleSimilarity  float64 `yaml:"title_similarity"`
	AuthorSimilarity float64 `yaml:"author_similarity"`
	TouchCapacity    int     `yaml:"touch_capacity"`
	RetryAttempts    int     `yaml:"retry_attempts"`
	KeyadderKey      string  `yaml:"keyadder_key"`
	OtelEnabled      bool    `yaml:"otel_enabled"`
}

// LoadConfig reads the environment, then lets an optional yaml file
// named by CONFIG_FILE override individual fields.
func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:             utils.GetEnv("PORT", "8080", log),
		TitleSimilarity:  utils.GetEnvAsFloat("MERGE_TITLE_SIMILARITY", 0.66, log),
		AuthorSimilarity: utils.GetEnvAsFloat("MERGE_AUTHOR_SIMILARITY", 0.8, log),
		TouchCapacity:    utils.GetEnvAsInt("TOUCH_LOG_CAPACITY", 5, log),
		RetryAttempts:    utils.GetEnvAsInt("SUBMIT_RETRY_ATTEMPTS", 2, log),
		KeyadderKey:      utils.GetEnv("KEYADDER_KEY", "", log),
		OtelEnabled:      utils.GetEnv("OTEL_ENABLED", "", log) != "",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("config file unreadable, using environment only", "path", path, "error", err)
			return cfg
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Warn("config file unparseable, using environment only", "path", path, "error", err)
		}
	}
	return cfg
}
