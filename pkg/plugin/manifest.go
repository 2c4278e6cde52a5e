package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the optional descriptor inside a plugin directory.
const ManifestFile = "plugin.yaml"

// ErrNoManifest is returned when a plugin ships no manifest.
var ErrNoManifest = errors.New("plugin has no manifest")

// Manifest describes a plugin. It is informational only; module resolution
// never reads it.
type Manifest struct {
	// Name is the display name of the plugin.
	Name string `yaml:"name" validate:"required"`

	// Version is the plugin version.
	Version string `yaml:"version" validate:"omitempty,semver"`

	// Description is a one-line summary.
	Description string `yaml:"description"`

	// Requires lists other plugins this one expects to be installed.
	Requires []string `yaml:"requires" validate:"dive,required"`
}

var validate = validator.New()

// Manifest loads and validates the plugin's manifest.
func (p Plugin) Manifest() (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(p.Path, ManifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoManifest
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses and validates manifest YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}
