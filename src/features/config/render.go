package config

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// redacted returns a copy of the config safe to print.
func (c *Config) redacted() Config {
	cpy := *c
	if cpy.Telegram.Token != "" {
		cpy.Telegram.Token = "<redacted>"
	}
	return cpy
}

// YAML returns the effective configuration as YAML, secrets redacted.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c.redacted())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// JSON returns the effective configuration as JSON, secrets redacted.
func (c *Config) JSON() (string, error) {
	out, err := json.Marshal(c.redacted())
	if err != nil {
		return "", err
	}
	return string(out), nil
}
