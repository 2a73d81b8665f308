package indexer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// installSettings validates the source settings file as YAML and writes it
// to dst. A corrupt settings file would otherwise surface as an opaque
// subprocess failure minutes into a run.
func installSettings(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("settings %s is not valid yaml: %w", src, err)
	}
	if len(doc) == 0 {
		return fmt.Errorf("settings %s is empty", src)
	}

	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("install settings: %w", err)
	}
	return nil
}
