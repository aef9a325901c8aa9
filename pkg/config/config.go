// Package config loads mvnbox settings from a TOML file.
//
// The file is looked up at --config, else $XDG_CONFIG_HOME/mvnbox/config.toml
// (the platform config directory). A missing default file is not an error;
// built-in defaults apply. MAVEN_HOME and JAVA_HOME, when set, override the
// corresponding file values.
//
//	[maven]
//	home = "/opt/maven"
//	java_home = "/usr/lib/jvm/java-17"
//	jvm_args = ["-Xmx1g"]
//
//	[cache]
//	ttl = "24h"
//
//	[lock]
//	redis_addr = "localhost:6379"
//	ttl = "30m"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mvnbox/pkg/errors"
	"github.com/matzehuels/mvnbox/pkg/sandbox"
)

const (
	appName  = "mvnbox"
	fileName = "config.toml"

	EnvMavenHome = "MAVEN_HOME"
	EnvJavaHome  = "JAVA_HOME"
)

// Duration is a time.Duration read from strings such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete settings file.
type Config struct {
	Maven  Maven  `toml:"maven"`
	Cache  Cache  `toml:"cache"`
	Lock   Lock   `toml:"lock"`
	Server Server `toml:"server"`
}

// Maven locates the Maven libraries and the JVM.
type Maven struct {
	Home      string   `toml:"home"`
	Java      string   `toml:"java"`
	JavaHome  string   `toml:"java_home"`
	MainClass string   `toml:"main_class"`
	Roots     []string `toml:"roots"`
	JVMArgs   []string `toml:"jvm_args"`
}

// Cache configures the remote response cache.
type Cache struct {
	TTL Duration `toml:"ttl"`
}

// Lock configures the optional cross-process build lock.
type Lock struct {
	RedisAddr string   `toml:"redis_addr"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Maven:  Maven{MainClass: sandbox.DefaultMainClass},
		Cache:  Cache{TTL: Duration{24 * time.Hour}},
		Lock:   Lock{Prefix: appName + ":", TTL: Duration{30 * time.Minute}},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, fileName), nil
}

// Load reads path over the defaults. An empty path reads [DefaultPath] if
// it exists. An explicit path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, cfg.applyEnv()
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, cfg.applyEnv()
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeNotConfigured, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, cfg.applyEnv()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvMavenHome); v != "" {
		c.Maven.Home = v
	}
	if v := os.Getenv(EnvJavaHome); v != "" {
		c.Maven.JavaHome = v
	}
	return nil
}

// SearchRoots returns the configured module search roots, defaulting to the
// lib and boot folders of the Maven home.
func (c Config) SearchRoots() []string {
	if len(c.Maven.Roots) > 0 {
		return c.Maven.Roots
	}
	if c.Maven.Home == "" {
		return nil
	}
	return []string{
		filepath.Join(c.Maven.Home, "lib"),
		filepath.Join(c.Maven.Home, "boot"),
	}
}

// Validate checks that a build can be attempted with these settings.
func (c Config) Validate() error {
	if len(c.SearchRoots()) == 0 {
		return errors.New(errors.ErrCodeNotConfigured,
			"no maven libraries configured: set [maven].home, [maven].roots or %s", EnvMavenHome)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache ttl cannot be negative")
	}
	if c.Lock.TTL.Duration <= 0 && c.Lock.RedisAddr != "" {
		return errors.New(errors.ErrCodeInvalidInput, "lock ttl must be positive")
	}
	return nil
}
