// Package config loads pathit settings from a YAML file and PATHIT_*
// environment variables. Command-line flags are applied on top by the CLI, so
// the precedence is flags > environment > file > defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"pathit/internal/digest"
	"pathit/internal/errs"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = ".pathit.yml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PATHIT_"

// Config holds the settings shared by every command.
type Config struct {
	Hash           bool     `yaml:"hash"`
	Algorithm      string   `yaml:"algorithm"`
	Sorted         bool     `yaml:"sorted"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	Exclude        []string `yaml:"exclude"`
	IgnoreFile     string   `yaml:"ignore_file"`
	BufferSize     int      `yaml:"buffer_size"`
	JSON           bool     `yaml:"json"`

	// Source is the file the settings came from, empty for defaults only.
	Source string `yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Algorithm:      string(digest.SHA256),
		FollowSymlinks: true,
		BufferSize:     32 * 1024,
	}
}

// Load reads path over the defaults. An empty path tries DefaultFile and
// silently keeps the defaults when it does not exist; a named file must
// exist. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, errs.NewLoadConfig(path, err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, errs.NewLoadConfig(path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from PATHIT_HASH, PATHIT_ALGORITHM,
// PATHIT_SORTED, PATHIT_FOLLOW_SYMLINKS, PATHIT_JSON, PATHIT_EXCLUDE (comma
// separated), PATHIT_IGNORE_FILE and PATHIT_BUFFER_SIZE. Empty values are
// ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for key, dst := range map[string]*bool{
		"HASH":            &c.Hash,
		"SORTED":          &c.Sorted,
		"FOLLOW_SYMLINKS": &c.FollowSymlinks,
		"JSON":            &c.JSON,
	} {
		v, ok, err := envBool(lookup, EnvPrefix+key)
		if err != nil {
			return err
		}
		if ok {
			*dst = v
		}
	}
	if v, ok := envString(lookup, EnvPrefix+"ALGORITHM"); ok {
		c.Algorithm = v
	}
	if v, ok := envString(lookup, EnvPrefix+"IGNORE_FILE"); ok {
		c.IgnoreFile = v
	}
	if v, ok := envString(lookup, EnvPrefix+"EXCLUDE"); ok {
		c.Exclude = splitList(v)
	}
	if v, ok := envString(lookup, EnvPrefix+"BUFFER_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return errs.NewLoadConfig("$"+EnvPrefix+"BUFFER_SIZE",
				fmt.Errorf("not a positive integer: %q", v))
		}
		c.BufferSize = n
	}
	return nil
}

// Validate checks values no parser caught.
func (c Config) Validate() error {
	if _, err := digest.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("buffer_size must not be negative: %d", c.BufferSize)
	}
	return nil
}

func envString(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envBool(lookup LookupFunc, key string) (value, ok bool, err error) {
	v, set := envString(lookup, key)
	if !set {
		return false, false, nil
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, true, nil
	case "0", "false", "no", "off":
		return false, true, nil
	}
	return false, false, errs.NewLoadConfig("$"+key, fmt.Errorf("boolean value expected, got %q", v))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
