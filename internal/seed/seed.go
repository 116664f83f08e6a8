package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leadtriage/backend/internal/models"
)

// FileProvider reads the initial lead collection from a YAML file. An empty
// Path yields no leads.
type FileProvider struct {
	Path string
}

func (p FileProvider) Seed(_ context.Context) ([]models.Lead, error) {
	if strings.TrimSpace(p.Path) == "" {
		return nil, nil
	}
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", p.Path, err)
	}
	var leads []models.Lead
	if err := yaml.Unmarshal(b, &leads); err != nil {
		return nil, fmt.Errorf("seed: decode %s: %w", p.Path, err)
	}
	for i, l := range leads {
		if l.ID == "" {
			return nil, fmt.Errorf("seed: lead %d has no id", i)
		}
		if !l.Source.Valid() {
			return nil, fmt.Errorf("seed: lead %s has unknown source %q", l.ID, l.Source)
		}
		leads[i].Timestamp = l.Timestamp.UTC()
	}
	return leads, nil
}
