package sieve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sievelabs/sieve/internal/filter"
	"github.com/sievelabs/sieve/internal/types"
)

// Config is the engine configuration file format.
type Config struct {
	Name   string              `yaml:"name"`
	Fields []types.ConfigField `yaml:"fields"`
}

// DefaultConfig returns a configuration mirroring the built-in
// IDEA-style field schema, suitable for writing as a starting point.
func DefaultConfig() Config {
	return Config{
		Name: "sieve",
		Fields: []types.ConfigField{
			{Path: "CreateTime", Type: "datetime"},
			{Path: "DetectTime", Type: "datetime"},
			{Path: "EventTime", Type: "datetime"},
			{Path: "CeaseTime", Type: "datetime"},
			{Path: "WinStartTime", Type: "datetime"},
			{Path: "WinEndTime", Type: "datetime"},
			{Path: "Source.IP4", Type: "ipv4"},
			{Path: "Target.IP4", Type: "ipv4"},
			{Path: "Source.IP6", Type: "ipv6"},
			{Path: "Target.IP6", Type: "ipv6"},
		},
	}
}

func parseConfigurationFile(configurationPath string) (Config, error) {
	var config Config

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func extendSchema(schema filter.Schema, fields []types.ConfigField) error {
	for _, field := range fields {
		if field.Path == "" {
			return fmt.Errorf("configuration field with empty path")
		}
		switch field.Type {
		case "datetime":
			schema[field.Path] = filter.DatetimeCoercion()
		case "ipv4":
			schema[field.Path] = filter.IPv4Coercion()
		case "ipv6":
			schema[field.Path] = filter.IPv6Coercion()
		default:
			return fmt.Errorf("unknown field type %q for path %q", field.Type, field.Path)
		}
	}
	return nil
}
