package app

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/grbod/labtrack/internal/domain"
)

//go:embed seed_methods.yaml
var embeddedCatalog []byte

type seedMethod struct {
	Name    string   `yaml:"name"`
	Unit    string   `yaml:"unit"`
	Method  string   `yaml:"method"`
	SpecMin *float64 `yaml:"spec_min"`
	SpecMax *float64 `yaml:"spec_max"`
}

type seedCatalog struct {
	Methods []seedMethod `yaml:"methods"`
}

// seedTestMethods upserts the test-method catalog. The embedded catalog
// is used unless overridePath names a YAML file. Idempotent: existing
// entries are updated in place.
func seedTestMethods(ctx context.Context, repo domain.TestMethodRepository, overridePath string, logger *slog.Logger) error {
	raw := embeddedCatalog
	source := "embedded"
	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return fmt.Errorf("read seed catalog %s: %w", overridePath, err)
		}
		raw = data
		source = overridePath
	}

	var catalog seedCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("parse seed catalog %s: %w", source, err)
	}

	for _, m := range catalog.Methods {
		if m.Name == "" {
			return fmt.Errorf("seed catalog %s: method with empty name", source)
		}
		err := repo.Upsert(ctx, &domain.TestMethod{
			Name:    m.Name,
			Unit:    m.Unit,
			Method:  m.Method,
			SpecMin: m.SpecMin,
			SpecMax: m.SpecMax,
		})
		if err != nil {
			return fmt.Errorf("seed method %q: %w", m.Name, err)
		}
	}
	logger.Info("seeded test method catalog", "source", source, "methods", len(catalog.Methods))
	return nil
}
