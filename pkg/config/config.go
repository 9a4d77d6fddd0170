// Package config loads sqlchat's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/sqlchat/pkg/chat"
	"github.com/papercomputeco/sqlchat/pkg/query"
	"github.com/papercomputeco/sqlchat/pkg/sqlformat"
)

// Config is the sqlchat configuration.
type Config struct {
	// Endpoint is the text-to-SQL URL questions are posted to.
	Endpoint string `toml:"endpoint"`

	// Dialect configures the SQL formatter. Only "mysql" is supported.
	Dialect string `toml:"dialect"`

	// UppercaseKeywords upper-cases clause keywords in formatted SQL.
	UppercaseKeywords bool `toml:"uppercase_keywords"`

	// StrictFormat turns unparseable SQL into an error bubble instead of
	// laying out the raw text.
	StrictFormat bool `toml:"strict_format"`

	// ErrorPrefix starts every error bubble.
	ErrorPrefix string `toml:"error_prefix"`

	// FenceLanguage tags the code fence around generated SQL.
	FenceLanguage string `toml:"fence_language"`

	// RequestTimeout bounds each query (e.g. "30s"). Empty or "0" means none.
	RequestTimeout string `toml:"request_timeout"`

	// Listen is the web surface's address (e.g. ":8080").
	Listen string `toml:"listen"`

	// Debug enables debug logging.
	Debug bool `toml:"debug"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:      query.DefaultEndpoint,
		Dialect:       sqlformat.MySQL,
		ErrorPrefix:   chat.DefaultErrorPrefix,
		FenceLanguage: chat.DefaultFenceLanguage,
		Listen:        ":8080",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not decode config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("endpoint %q is not an http(s) URL", c.Endpoint))
	}

	if _, err := sqlformat.New(sqlformat.Options{Dialect: c.Dialect}); err != nil {
		errs = append(errs, err)
	}

	if _, err := c.Timeout(); err != nil {
		errs = append(errs, err)
	}

	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}

	return errors.Join(errs...)
}

// Timeout parses RequestTimeout. Zero means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid request_timeout %q: %w", c.RequestTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid request_timeout %q: negative", c.RequestTimeout)
	}

	return d, nil
}
