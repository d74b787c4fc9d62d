package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Key vault backend names accepted in Keys.Backend.
const (
	VaultBackendFile  = "file"
	VaultBackendMinio = "minio"
)

// Password codec names accepted in Crypto.Codec.
const (
	CodecECB = "ecb"
	CodecGCM = "gcm"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel int     `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP    `envPrefix:"HTTP_"`
	Users    Users   `envPrefix:"USERS_"`
	Keys     Keys    `envPrefix:"KEYS_"`
	Crypto   Crypto  `envPrefix:"CRYPTO_"`
	Storage  Storage `envPrefix:"MINIO_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port               string `env:"PORT" envDefault:"8080"`
	EnableHTTPS        bool   `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// Users contains user table parameters.
type Users struct {
	Path string `env:"PATH" envDefault:"users.csv"`
}

// Keys contains key vault parameters. PathTemplate must hold a single %s
// placeholder that is substituted with the username.
type Keys struct {
	Backend      string `env:"BACKEND" envDefault:"file"`
	PathTemplate string `env:"PATH_TEMPLATE" envDefault:"keys/%s.key"`
}

// Crypto selects the password codec.
type Crypto struct {
	Codec string `env:"CODEC" envDefault:"ecb"`
}

// Storage contains object storage parameters for the minio vault backend.
type Storage struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"credvault-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"credvault-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"credvault-keys"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"keys/"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Keys.Backend {
	case VaultBackendFile, VaultBackendMinio:
	default:
		return fmt.Errorf("unknown key vault backend %q", c.Keys.Backend)
	}

	switch c.Crypto.Codec {
	case CodecECB, CodecGCM:
	default:
		return fmt.Errorf("unknown password codec %q", c.Crypto.Codec)
	}

	if strings.Count(c.Keys.PathTemplate, "%s") != 1 {
		return fmt.Errorf("key path template %q must contain exactly one %%s placeholder", c.Keys.PathTemplate)
	}

	return nil
}
