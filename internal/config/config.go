package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Configuration struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `mapstructure:"listen_addr"`
	// CorplistPath is the path to the corpus-definition XML file. The service
	// refuses to start without it; an empty catalog is a configuration error.
	CorplistPath string `mapstructure:"corplist_path"`
	// AnonymousUserID is the fixed user id every unauthenticated or rejected
	// caller resolves to.
	AnonymousUserID int64 `mapstructure:"anonymous_user_id"`
	// LogoutURL is where callers are sent after logging out.
	LogoutURL string `mapstructure:"logout_url"`
	// TagPrefix marks keyword tokens in search queries, e.g. "#".
	TagPrefix string `mapstructure:"tag_prefix"`
	// MaxNumHints caps the hint count reported by the corpus selection
	// widget, even when more results exist. Zero means no cap.
	MaxNumHints int `mapstructure:"max_num_hints"`
	// MaxPageSize caps the page size of catalog search results. Zero means
	// no cap.
	MaxPageSize int `mapstructure:"max_page_size"`
	// DefaultLabel is the keyword seeded into a session that has not yet
	// selected any.
	DefaultLabel string `mapstructure:"default_label"`
	// RegistryLocale is the collator locale used when a corpus does not
	// declare its own.
	RegistryLocale string `mapstructure:"registry_locale"`
	// IDHeaders overrides the priority-ordered federated identity header
	// names. Empty keeps the built-in defaults.
	IDHeaders []string `mapstructure:"id_headers"`
	// SessionKey is the secret the cookie session manager signs with.
	SessionKey string `mapstructure:"session_key"`

	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`

	// SMTPHost and SMTPPort locate the relay access-request mails go out
	// through.
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	// AccessReqSender is the From address of access-request mails.
	AccessReqSender string `mapstructure:"access_req_sender"`
	// AccessReqRecipients lists the administrators notified about access
	// requests. Each is attempted independently.
	AccessReqRecipients []string `mapstructure:"access_req_recipients"`

	// Debug enables request logging and debug-level output.
	Debug bool `mapstructure:"debug"`
}

// ReadConfig loads the configuration from ./config.yaml with CATALOG_*
// environment variables taking precedence.
func ReadConfig() (Configuration, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("catalog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("corplist_path", "")
	v.SetDefault("logout_url", "")
	v.SetDefault("session_key", "")
	v.SetDefault("id_headers", []string{})
	v.SetDefault("redis_db", 0)
	v.SetDefault("smtp_host", "")
	v.SetDefault("access_req_sender", "")
	v.SetDefault("access_req_recipients", []string{})
	v.SetDefault("debug", false)
	v.SetDefault("anonymous_user_id", 0)
	v.SetDefault("tag_prefix", "#")
	v.SetDefault("max_num_hints", 10)
	v.SetDefault("max_page_size", 50)
	v.SetDefault("default_label", "featured")
	v.SetDefault("registry_locale", "en_US")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("smtp_port", 25)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Configuration{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return Configuration{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Configuration) validate() error {
	var errs []error
	if c.CorplistPath == "" {
		errs = append(errs, errors.New("corplist_path is required"))
	}
	if c.SessionKey == "" {
		errs = append(errs, errors.New("session_key is required"))
	}
	if c.SMTPHost != "" && c.AccessReqSender == "" {
		errs = append(errs, errors.New("access_req_sender is required when smtp_host is set"))
	}
	return errors.Join(errs...)
}
