package config

import (
	"errors"
	"fmt"

	"github.com/macropower/pasteflow/api"
	"github.com/macropower/pasteflow/api/v1beta1/configs"
)

// ErrRuleNotFound is returned when a rule id is not configured.
var ErrRuleNotFound = errors.New("rule not found")

// Save validates cfg and replaces the file at path with it.
func Save(path string, cfg *configs.Configuration) error {
	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	b, err := cfg.MarshalYAML()
	if err != nil {
		return err
	}

	err = api.WriteFile(path, b)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	return nil
}

// Load reads, validates and loads the configuration at path.
func Load(path string, opts ...LoaderOpt) (*configs.Configuration, error) {
	l, err := NewLoaderFromFile(path, configs.New, configs.DefaultValidator, opts...)
	if err != nil {
		return nil, err
	}

	return l.ValidateAndLoad()
}
