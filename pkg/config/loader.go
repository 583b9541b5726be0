package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
)

// loadAndMerge decodes the YAML file at path over cfg. Keys absent from the
// file keep their current values; unknown keys are rejected.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return mergeYAML(cfg, data, path)
}

func mergeYAML(cfg *Config, data []byte, path string) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return lerrors.Wrap(err, lerrors.ErrCodeConfigParse, "parsing YAML").WithContext("path", path)
	}
	return nil
}
