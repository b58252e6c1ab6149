package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Booking backends selectable through BOOKING_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendHTTP     = "http"
)

type Config struct {
	ListenAddr  string
	BaseURL     string
	DatabaseURL string

	CookieHashKey  []byte
	CookieBlockKey []byte
	// EphemeralKeys is set when cookie keys were generated at startup.
	EphemeralKeys bool

	// ContactEncKey seals guest phone/email at rest (AES-256-GCM).
	ContactEncKey []byte

	BookingBackend string
	BookingURL     string
	BookingAPIKey  string
	BookingTimeout time.Duration

	MaxGuests     int
	DraftTTL      time.Duration
	SweepInterval time.Duration
	Location      *time.Location

	AnnouncementsFile string
	LoadingMin        time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  string
	LogFormat string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("database_url", "")
	v.SetDefault("booking_backend", "")
	v.SetDefault("booking_url", "")
	v.SetDefault("booking_api_key", "")
	v.SetDefault("booking_timeout", "10s")
	v.SetDefault("max_guests", 10)
	v.SetDefault("draft_ttl", "30m")
	v.SetDefault("sweep_interval", "1m")
	v.SetDefault("timezone", "Europe/Helsinki")
	v.SetDefault("announcements_file", "")
	v.SetDefault("loading_min_ms", 600)
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "reservations")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads configuration from the environment, optionally layered over a
// config file (yaml, toml or json). Environment variables always win.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return fromViper(v)
}

// FromEnv is Load without a config file.
func FromEnv() (Config, error) { return Load("") }

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		ListenAddr:        strings.TrimSpace(v.GetString("listen_addr")),
		BaseURL:           strings.TrimRight(strings.TrimSpace(v.GetString("base_url")), "/"),
		DatabaseURL:       strings.TrimSpace(v.GetString("database_url")),
		BookingBackend:    strings.ToLower(strings.TrimSpace(v.GetString("booking_backend"))),
		BookingURL:        strings.TrimSpace(v.GetString("booking_url")),
		BookingAPIKey:     strings.TrimSpace(v.GetString("booking_api_key")),
		BookingTimeout:    v.GetDuration("booking_timeout"),
		MaxGuests:         v.GetInt("max_guests"),
		DraftTTL:          v.GetDuration("draft_ttl"),
		SweepInterval:     v.GetDuration("sweep_interval"),
		AnnouncementsFile: strings.TrimSpace(v.GetString("announcements_file")),
		LoadingMin:        time.Duration(v.GetInt("loading_min_ms")) * time.Millisecond,
		KafkaBrokers:      splitCSV(v.GetString("kafka_brokers")),
		KafkaTopic:        strings.TrimSpace(v.GetString("kafka_topic")),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
	}

	if cfg.BookingBackend == "" {
		cfg.BookingBackend = BackendMemory
		if cfg.DatabaseURL != "" {
			cfg.BookingBackend = BackendPostgres
		}
	}

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	cfg.Location = loc

	hashKey := strings.TrimSpace(v.GetString("cookie_hash_key"))
	blockKey := strings.TrimSpace(v.GetString("cookie_block_key"))
	switch {
	case hashKey == "" && blockKey == "":
		cfg.CookieHashKey, cfg.CookieBlockKey = randomKey(32), randomKey(32)
		cfg.EphemeralKeys = true
	case hashKey == "" || blockKey == "":
		return Config{}, errors.New("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY must be set together (base64)")
	default:
		if cfg.CookieHashKey, err = decodeB64(hashKey); err != nil {
			return Config{}, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
		}
		if cfg.CookieBlockKey, err = decodeB64(blockKey); err != nil {
			return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
		}
	}

	if raw := strings.TrimSpace(v.GetString("contact_enc_key")); raw != "" {
		if cfg.ContactEncKey, err = decodeB64(raw); err != nil {
			return Config{}, fmt.Errorf("CONTACT_ENC_KEY: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR is required")
	}
	if c.MaxGuests < 1 {
		return fmt.Errorf("MAX_GUESTS must be >= 1 (got %d)", c.MaxGuests)
	}
	if c.DraftTTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("DRAFT_TTL and SWEEP_INTERVAL must be positive")
	}
	if c.BookingTimeout <= 0 {
		return errors.New("BOOKING_TIMEOUT must be positive")
	}
	switch c.BookingBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("BOOKING_BACKEND=postgres requires DATABASE_URL")
		}
		if len(c.ContactEncKey) != 32 {
			return fmt.Errorf("CONTACT_ENC_KEY must decode to 32 bytes (got %d)", len(c.ContactEncKey))
		}
	case BackendHTTP:
		if c.BookingURL == "" {
			return errors.New("BOOKING_BACKEND=http requires BOOKING_URL")
		}
	default:
		return fmt.Errorf("unknown BOOKING_BACKEND %q", c.BookingBackend)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

// decodeB64 accepts either a base64 value or a path to a file holding one
// (k8s secret mounts).
func decodeB64(s string) ([]byte, error) {
	if b, err := os.ReadFile(s); err == nil {
		s = string(b)
	}
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func randomKey(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return b
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
