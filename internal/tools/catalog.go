package tools

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Band is one threshold step: values strictly below Max take Label; the
// terminal band has no Max and catches everything else.
type Band struct {
	Max   *float64 `yaml:"max"`
	Label string   `yaml:"label"`
}

// StatSpec describes one statistic tool: where its number comes from and how
// to classify it.
type StatSpec struct {
	Name        string            `yaml:"name"`
	Label       string            `yaml:"label"`
	Description string            `yaml:"description"`
	Dataflow    string            `yaml:"dataflow"`
	KeyTemplate string            `yaml:"key_template"`
	Params      map[string]string `yaml:"params"`
	Unit        string            `yaml:"unit"`
	Precision   int               `yaml:"precision"`
	Bands       []Band            `yaml:"bands"`
}

// BandLabel classifies a value against the spec's thresholds.
func (s StatSpec) BandLabel(v float64) string {
	for _, b := range s.Bands {
		if b.Max == nil || v < *b.Max {
			return b.Label
		}
	}
	return ""
}

// Catalog is the embedded statistic tool catalogue.
type Catalog struct {
	Stats []StatSpec `yaml:"stats"`
}

// LoadCatalog parses the embedded catalogue.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, eris.Wrap(err, "tools: parse catalog")
	}
	if len(c.Stats) == 0 {
		return nil, eris.New("tools: catalog has no stats")
	}
	for _, s := range c.Stats {
		if s.Name == "" || s.Dataflow == "" || s.KeyTemplate == "" {
			return nil, eris.Errorf("tools: catalog entry %q missing name, dataflow, or key_template", s.Name)
		}
		if len(s.Bands) == 0 || s.Bands[len(s.Bands)-1].Max != nil {
			return nil, eris.Errorf("tools: catalog entry %q needs a terminal band", s.Name)
		}
	}
	return &c, nil
}
