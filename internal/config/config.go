package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "WISDOM"

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
	ModeAWS   Mode = "aws"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory" o "firestore"
	JournalBackend string // "memory" o "postgres"
	DatabaseURL    string
	UseMockLLM     bool // true = use mock even on GCP

	GenerationTimeout   time.Duration
	SummaryLimit        int
	ActiveSessionPolicy string
	TriggerConfigPath   string
	KnownNames          []string

	JWTSecret string

	SpendEnabled    bool
	SpendTableName  string
	DailySpendLimit float64
	KMSKeyID        string

	LogLevel string
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeLocal))
	v.SetDefault("port", "8080")
	v.SetDefault("gcp.location", "us-central1")
	v.SetDefault("gcp.model", "gemini-2.5-flash-lite")
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("journal.backend", "memory")
	v.SetDefault("coaching.generation_timeout", 20*time.Second)
	v.SetDefault("coaching.summary_limit", 500)
	v.SetDefault("coaching.active_session_policy", "allow_concurrent")
	v.SetDefault("spend.enabled", false)
	v.SetDefault("spend.table", "wisdom-coach-user-spend")
	v.SetDefault("spend.daily_limit", 1.0)
	v.SetDefault("logging.level", "info")
}

// New returns a viper instance bound to WISDOM_* environment variables,
// reading configFile when it is not empty.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load builds the config from v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var mode Mode
	switch strings.ToLower(v.GetString("mode")) {
	case "gcp":
		mode = ModeGCP
	case "aws":
		mode = ModeAWS
	default:
		mode = ModeLocal
	}

	useMock := mode == ModeLocal
	if v.IsSet("llm.mock") {
		useMock = v.GetBool("llm.mock")
	}

	cfg := &Config{
		Mode: mode,

		Port: v.GetString("port"),

		GCPProjectID: v.GetString("gcp.project"),
		GCPLocation:  v.GetString("gcp.location"),
		ModelName:    v.GetString("gcp.model"),

		StorageBackend: v.GetString("storage.backend"),
		JournalBackend: v.GetString("journal.backend"),
		DatabaseURL:    v.GetString("database.url"),
		UseMockLLM:     useMock,

		GenerationTimeout:   v.GetDuration("coaching.generation_timeout"),
		SummaryLimit:        v.GetInt("coaching.summary_limit"),
		ActiveSessionPolicy: v.GetString("coaching.active_session_policy"),
		TriggerConfigPath:   v.GetString("coaching.trigger_config"),
		KnownNames:          v.GetStringSlice("coaching.known_names"),

		JWTSecret: v.GetString("auth.jwt_secret"),

		SpendEnabled:    v.GetBool("spend.enabled"),
		SpendTableName:  v.GetString("spend.table"),
		DailySpendLimit: v.GetFloat64("spend.daily_limit"),
		KMSKeyID:        v.GetString("kms.key_id"),

		LogLevel: v.GetString("logging.level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return fmt.Errorf("WISDOM_GCP_PROJECT must be set in gcp mode")
	}
	if c.StorageBackend == "firestore" && c.GCPProjectID == "" {
		return fmt.Errorf("WISDOM_GCP_PROJECT is required for the firestore storage backend")
	}
	if c.JournalBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("WISDOM_DATABASE_URL is required for the postgres journal backend")
	}
	if c.SummaryLimit < 0 {
		return fmt.Errorf("coaching.summary_limit must not be negative")
	}
	return nil
}
