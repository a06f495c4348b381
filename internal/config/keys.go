package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "POSTFORGE_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.api_token", typ: kString, env: "POSTFORGE_SERVER_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "providers.openai_api_key", typ: kString, env: "POSTFORGE_OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Providers.OpenAIAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.OpenAIAPIKey },
	},
	{
		key: "providers.openai_base_url", typ: kString, env: "POSTFORGE_OPENAI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Providers.OpenAIBaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.OpenAIBaseURL },
	},
	{
		key: "providers.gemini_api_key", typ: kString, env: "POSTFORGE_GEMINI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Providers.GeminiAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.GeminiAPIKey },
	},
	{
		key: "providers.gemini_base_url", typ: kString, env: "POSTFORGE_GEMINI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Providers.GeminiBaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.GeminiBaseURL },
	},
	{
		key: "providers.default_model", typ: kString, env: "POSTFORGE_DEFAULT_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Providers.DefaultModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Providers.DefaultModel },
	},
	{
		key: "serp.api_key", typ: kString, env: "POSTFORGE_SERPER_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Serp.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Serp.APIKey },
	},
	{
		key: "serp.base_url", typ: kString, env: "POSTFORGE_SERP_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Serp.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Serp.BaseURL },
	},
	{
		key: "images.base_url", typ: kString, env: "POSTFORGE_IMAGES_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Images.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Images.BaseURL },
	},
	{
		key: "images.model", typ: kString, env: "POSTFORGE_IMAGES_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Images.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Images.Model },
	},
	{
		key: "images.width", typ: kInt, env: "POSTFORGE_IMAGES_WIDTH",
		apply:   func(cfg *Config, v any) { cfg.Images.Width = v.(int) },
		extract: func(cfg Config) any { return cfg.Images.Width },
	},
	{
		key: "images.height", typ: kInt, env: "POSTFORGE_IMAGES_HEIGHT",
		apply:   func(cfg *Config, v any) { cfg.Images.Height = v.(int) },
		extract: func(cfg Config) any { return cfg.Images.Height },
	},
	{
		key: "storage.data_dir", typ: kString, env: "POSTFORGE_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "POSTFORGE_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
