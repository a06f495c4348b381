package config

import "strings"

type Config struct {
	Server    ServerConfig
	Providers ProvidersConfig
	Serp      SerpConfig
	Images    ImagesConfig
	Storage   StorageConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
	// APIToken, when set, requires Bearer auth on the /api routes.
	APIToken string
}

type ProvidersConfig struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiBaseURL string
	DefaultModel  string
}

type SerpConfig struct {
	APIKey  string
	BaseURL string
}

type ImagesConfig struct {
	BaseURL string
	Model   string
	Width   int
	Height  int
}

type StorageConfig struct {
	// DataDir is where the SQLite database lives. Empty means the in-memory
	// store is used instead.
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4200,
		},
		Providers: ProvidersConfig{
			DefaultModel: "gemini-2.5-flash",
		},
		Serp: SerpConfig{
			BaseURL: "https://google.serper.dev",
		},
		Images: ImagesConfig{
			BaseURL: "https://image.pollinations.ai",
			Model:   "flux",
			Width:   1024,
			Height:  1024,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.postforge.app) and
// secrets fall back to macOS Keychain. On Linux the backend is a JSON file
// at $XDG_CONFIG_HOME/postforge/config.json and secrets come from a file
// under $XDG_DATA_HOME/postforge.
//
// Environment variables (POSTFORGE_*) override backend values on all
// platforms. API keys are not required at load time: providers without a
// key simply fail when first used.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts Keychain access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform keychain for secrets still empty after env.
	fillSecret(&cfg.Providers.OpenAIAPIKey, kc, "openai_api_key")
	fillSecret(&cfg.Providers.GeminiAPIKey, kc, "gemini_api_key")
	fillSecret(&cfg.Serp.APIKey, kc, "serper_api_key")

	return cfg, nil
}

func fillSecret(dst *string, kc keychain, account string) {
	if *dst != "" {
		return
	}
	if key, err := kc.Get("postforge", account); err == nil && key != "" {
		*dst = key
	}
}

// keychainReader reads from macOS Keychain via the security CLI.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainExec(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
