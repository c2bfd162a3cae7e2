package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the data.yaml describing the bundle to the trainer: the
// relative image root per partition plus the ordered class list.
type Manifest struct {
	Path    string   `yaml:"path"`
	Train   string   `yaml:"train"`
	Predict string   `yaml:"predict"`
	Val     string   `yaml:"val"`
	NC      int      `yaml:"nc"`
	Names   []string `yaml:"names"`
}

func NewManifest(labels []string) Manifest {
	return Manifest{
		Path:    "./",
		Train:   "images/train",
		Predict: "images/predict",
		Val:     "images/val",
		NC:      len(labels),
		Names:   labels,
	}
}

func (m Manifest) WriteFile(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
