package modes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk form of a set of mode definitions.
//
//	modes:
//	  - id: immunological
//	    name: Immunological
//	    description: ...
//	    keywords: [antigen, antibody]
//	    system_prompt: |
//	      You are an Immunology Reasoning Expert. ...
//	    tools:
//	      a: [parametric_memory]
//	      c: [search_literature, uniprot_search]
type Catalog struct {
	Modes []Definition `yaml:"modes"`
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse mode catalog: %w", err)
	}
	return c, nil
}

// LoadCatalog reads the YAML catalog at path and defines each mode in r.
// It stops at the first definition error.
func LoadCatalog(r *Registry, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read mode catalog %s: %w", path, err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return 0, err
	}
	for i, def := range c.Modes {
		if err := r.Define(def.ID, def); err != nil {
			return i, fmt.Errorf("mode catalog %s: %w", path, err)
		}
	}
	return len(c.Modes), nil
}

// MarshalCatalog encodes defs as a YAML catalog.
func MarshalCatalog(defs []Definition) ([]byte, error) {
	return yaml.Marshal(Catalog{Modes: defs})
}
