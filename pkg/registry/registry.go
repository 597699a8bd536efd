// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

func LoadRegistry(path string) (*StageRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg StageRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Find returns the stage descriptor with the given ID, if present.
func (r *StageRegistry) Find(id string) (*Stage, bool) {
	for i := range r.Stages {
		if r.Stages[i].ID == id {
			return &r.Stages[i], true
		}
	}
	return nil, false
}

// MissingStages returns the IDs that have no descriptor in the registry.
func (r *StageRegistry) MissingStages(ids []string) []string {
	var missing []string
	for _, id := range ids {
		if _, ok := r.Find(id); !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
