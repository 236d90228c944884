package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/yql/pkg/catalog"
)

// CatalogFileName is the name of the catalog file looked up next to a config.
const CatalogFileName = "catalog.yaml"

// CatalogFileNameAlt is the alternate name of the catalog file.
const CatalogFileNameAlt = "catalog.yml"

// LoadDefinition reads a catalog YAML file. Unknown keys are rejected so a
// misspelled section does not silently produce an empty catalog.
func LoadDefinition(path string) (catalog.Definition, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return catalog.Definition{}, fmt.Errorf("error reading catalog file %s: %w", path, err)
	}

	var def catalog.Definition
	err := k.UnmarshalWithConf("", &def, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			Result:           &def,
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	})
	if err != nil {
		return catalog.Definition{}, fmt.Errorf("unable to decode catalog file %s: %w", path, err)
	}
	return def, nil
}

// LoadCatalog reads and validates a catalog file. Sections the file leaves
// out fall back to the built-in keywords and functions, so a file may
// declare only relations.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	def, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	if len(def.Keywords) == 0 {
		def.Keywords = catalog.DefaultKeywords
	}
	if len(def.Functions) == 0 {
		def.Functions = catalog.DefaultFunctions
	}

	c, err := catalog.New(def)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
	}
	return c, nil
}

// FindCatalogFile returns the catalog file in dir, or "" if there is none.
func FindCatalogFile(dir string) string {
	for _, name := range []string{CatalogFileName, CatalogFileNameAlt} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
