package webserver

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lachlan2k/shiptrack/internal/models"
)

//go:embed shipments.yaml
var defaultShipmentsYAML []byte

type catalogueFile struct {
	Shipments []models.Shipment `yaml:"shipments"`
}

// Catalogue is the fixed set of shipments the stub server can find.
type Catalogue struct {
	shipments []models.Shipment
}

// LoadCatalogue reads a YAML catalogue from path, or the built-in one when path is blank.
func LoadCatalogue(path string) (*Catalogue, error) {
	if path == "" {
		return ParseCatalogue(defaultShipmentsYAML)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shipment catalogue: %w", err)
	}

	return ParseCatalogue(raw)
}

func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse shipment catalogue: %w", err)
	}

	return &Catalogue{shipments: file.Shipments}, nil
}

// Find returns the first shipment whose reference of the given type matches, ignoring case.
func (c *Catalogue) Find(t models.SearchType, ref string) (*models.Shipment, bool) {
	for i := range c.shipments {
		if c.shipments[i].Matches(t, ref) {
			shipment := c.shipments[i]
			return &shipment, true
		}
	}
	return nil, false
}

func (c *Catalogue) Len() int {
	return len(c.shipments)
}
