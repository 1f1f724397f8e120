package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderOpenAI = "openai"

	envFileName = ".env"
)

var ErrMissingEnv = errors.New("missing required environment variables")

// Config is read once at startup and handed to each component by the
// composition root.
type Config struct {
	TelegramToken string
	ChatID        int64
	DigestCron    string

	AIProvider       string
	AIModel          string
	GeminiAPIKey     string
	OpenAIAPIKey     string
	GoogleProjectID  string
	GoogleLocation   string
	BinanceAPIURL    string
	MarketTimeout    time.Duration
	LogLevel         string
	DevMode          bool
	EnvFile          string
	SearchedEnvPaths []string

	// Parsed for compatibility with existing deployments. Nothing enforces
	// them: the bot keeps no cache and applies no rate limits.
	MaxRequestsPerMinute int
	MaxAIRequestsPerHour int
	CacheTTL             time.Duration
	EnableCache          bool
}

type Options struct {
	// EnvFile, when set, must exist.
	EnvFile string
	// SearchDirs overrides the default .env lookup directories.
	SearchDirs []string
}

func Load(opts Options) (*Config, error) {
	envFile, searched, err := locateEnvFile(opts)
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = envFile
	cfg.SearchedEnvPaths = searched

	if missing := cfg.missing(); len(missing) > 0 {
		return nil, &MissingError{Vars: missing, Searched: searched, EnvFile: envFile}
	}
	return cfg, nil
}

// MissingError lists every required variable that was empty after loading
// and where a .env file was looked for.
type MissingError struct {
	Vars     []string
	Searched []string
	EnvFile  string
}

func (e *MissingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", ErrMissingEnv, strings.Join(e.Vars, ", "))
	if e.EnvFile != "" {
		fmt.Fprintf(&b, " (loaded %s)", e.EnvFile)
		return b.String()
	}
	b.WriteString("; no .env file found. Searched in:")
	for i, p := range e.Searched {
		fmt.Fprintf(&b, "\n%d. %s", i+1, p)
	}
	return b.String()
}

func (e *MissingError) Unwrap() error { return ErrMissingEnv }

func locateEnvFile(opts Options) (string, []string, error) {
	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err != nil {
			return "", []string{opts.EnvFile}, fmt.Errorf("env file %s: %w", opts.EnvFile, err)
		}
		return opts.EnvFile, []string{opts.EnvFile}, nil
	}

	dirs := opts.SearchDirs
	if dirs == nil {
		dirs = defaultSearchDirs()
	}

	searched := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		path := filepath.Join(dir, envFileName)
		searched = append(searched, path)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, searched, nil
		}
	}
	return "", searched, nil
}

func defaultSearchDirs() []string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		dirs = append(dirs, dir, filepath.Dir(dir))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	return dirs
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		DigestCron:      strings.TrimSpace(os.Getenv("DIGEST_CRON")),
		AIProvider:      strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini)),
		AIModel:         os.Getenv("AI_MODEL"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GoogleProjectID: os.Getenv("GOOGLE_CLOUD_PROJECT_ID"),
		GoogleLocation:  getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		BinanceAPIURL:   getEnv("BINANCE_API_URL", "https://api.binance.com/api/v3"),
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
	}

	var err error
	if cfg.DevMode, err = getBool("DEV_MODE", false); err != nil {
		return nil, err
	}
	if cfg.EnableCache, err = getBool("ENABLE_CACHE", true); err != nil {
		return nil, err
	}
	if cfg.MaxRequestsPerMinute, err = getInt("MAX_REQUESTS_PER_MINUTE", 30); err != nil {
		return nil, err
	}
	if cfg.MaxAIRequestsPerHour, err = getInt("MAX_AI_REQUESTS_PER_HOUR", 100); err != nil {
		return nil, err
	}

	ttl, err := getInt("CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(ttl) * time.Second

	timeout, err := getInt("MARKET_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid MARKET_TIMEOUT_SECONDS: must be positive, got %d", timeout)
	}
	cfg.MarketTimeout = time.Duration(timeout) * time.Second

	if chatID := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); chatID != "" {
		cfg.ChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	switch cfg.AIProvider {
	case ProviderGemini, ProviderVertex, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("invalid AI_PROVIDER %q: want gemini, vertex or openai", cfg.AIProvider)
	}

	return cfg, nil
}

func (c *Config) missing() []string {
	var missing []string
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	switch c.AIProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case ProviderVertex:
		if c.GoogleProjectID == "" {
			missing = append(missing, "GOOGLE_CLOUD_PROJECT_ID")
		}
	}
	return missing
}

// DigestEnabled reports whether the scheduled market digest should run.
func (c *Config) DigestEnabled() bool {
	return c.ChatID != 0 && c.DigestCron != ""
}

// Summary renders the configuration for startup logs with secrets masked.
func (c *Config) Summary() map[string]string {
	return map[string]string{
		"TELEGRAM_BOT_TOKEN":       Mask(c.TelegramToken),
		"GEMINI_API_KEY":           Mask(c.GeminiAPIKey),
		"OPENAI_API_KEY":           Mask(c.OpenAIAPIKey),
		"GOOGLE_CLOUD_PROJECT_ID":  c.GoogleProjectID,
		"AI_PROVIDER":              c.AIProvider,
		"AI_MODEL":                 c.AIModel,
		"BINANCE_API_URL":          c.BinanceAPIURL,
		"LOG_LEVEL":                c.LogLevel,
		"DEV_MODE":                 strconv.FormatBool(c.DevMode),
		"DIGEST_CRON":              c.DigestCron,
		"MAX_REQUESTS_PER_MINUTE":  strconv.Itoa(c.MaxRequestsPerMinute),
		"MAX_AI_REQUESTS_PER_HOUR": strconv.Itoa(c.MaxAIRequestsPerHour),
		"CACHE_TTL_SECONDS":        strconv.Itoa(int(c.CacheTTL / time.Second)),
		"ENABLE_CACHE":             strconv.FormatBool(c.EnableCache),
	}
}

// Mask keeps the first and last four characters of a secret.
func Mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "***"
	default:
		return secret[:4] + "..." + secret[len(secret)-4:]
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
