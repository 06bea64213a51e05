// Package config holds the settings of a wardroster run.
package config

import (
	"errors"
	"fmt"
	"time"
	"wardroster/lib/configutil"
	"wardroster/lib/scrapers/mls"
)

const (
	DefaultFile = "wardroster.json5"

	EnvUsername = "LDS_USERNAME"
	EnvPassword = "LDS_PASSWORD"
)

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// CacheDir holds raw/ and photos/.
	CacheDir  string `json:"cache_dir"`
	OutputDir string `json:"output_dir"`
	Title     string `json:"title"`

	IdentUrl                string `json:"ident_url"`
	BaseUrl                 string `json:"base_url"`
	TimeoutSeconds          int    `json:"timeout_seconds"`
	DisableCloudflareBypass bool   `json:"disable_cloudflare_bypass"`

	PhotoSize    string `json:"photo_size"`
	BatchDelayMs int    `json:"batch_delay_ms"`
}

func Defaults() Config {
	return Config{
		CacheDir:       "data",
		OutputDir:      "output",
		Title:          "Ward Callings",
		IdentUrl:       mls.DefaultIdentUrl,
		BaseUrl:        mls.DefaultBaseUrl,
		TimeoutSeconds: int(mls.DefaultTimeout / time.Second),
		PhotoSize:      "large",
		BatchDelayMs:   500,
	}
}

// Load reads `path` (and its .local override) on top of Defaults, a missing
// file leaves the defaults untouched.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, Defaults())
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv lets the environment override the credentials in the file.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := getenv(EnvPassword); v != "" {
		c.Password = v
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) BatchDelay() time.Duration {
	if c.BatchDelayMs < 0 {
		return -1
	}
	return time.Duration(c.BatchDelayMs) * time.Millisecond
}

func (c Config) Validate() error {
	var errs []error
	if c.CacheDir == "" {
		errs = append(errs, errors.New("cache_dir is empty"))
	}
	if !mls.ValidPhotoSize(c.PhotoSize) {
		errs = append(errs, fmt.Errorf("photo_size %q is not one of %v", c.PhotoSize, mls.PhotoSizes))
	}
	if c.TimeoutSeconds < 0 {
		errs = append(errs, errors.New("timeout_seconds is negative"))
	}
	return errors.Join(errs...)
}

// ClientOptions is the configuration of the MLS client with the credentials
// currently known.
func (c Config) ClientOptions() mls.ClientOptions {
	return mls.ClientOptions{
		IdentUrl:         c.IdentUrl,
		BaseUrl:          c.BaseUrl,
		Username:         c.Username,
		Password:         c.Password,
		Timeout:          c.Timeout(),
		CloudflareBypass: !c.DisableCloudflareBypass,
	}
}
