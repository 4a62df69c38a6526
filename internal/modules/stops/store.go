// README: Stop catalog file loader (YAML) with validation.
package stops

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Stops []Stop `yaml:"stops" validate:"required,min=1,dive"`
}

// LoadFile reads and validates a stop catalog.
func LoadFile(path string) ([]Stop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stops: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]Stop, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stops: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("invalid stops: %w", err)
	}
	seen := make(map[string]bool, len(f.Stops))
	for _, s := range f.Stops {
		if seen[s.ID] {
			return nil, fmt.Errorf("invalid stops: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return f.Stops, nil
}
