// Package config loads the tracker configuration from an optional YAML file
// with environment overrides for deployment-specific knobs.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string   `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`

	Storage   StorageConfig   `yaml:"storage"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Collector CollectorConfig `yaml:"collector"`
}

type StorageConfig struct {
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

type DatasetConfig struct {
	// Candidates are tried in order; the first parseable one wins.
	Candidates []string `yaml:"candidates"`
}

type CollectorConfig struct {
	APICandidates   []string `yaml:"api_candidates"`
	TerritoryCode   string   `yaml:"territory_code"`
	IncludeTypes    []string `yaml:"include_types"`
	KeywordsInclude []string `yaml:"keywords_include"`
	KeywordsExclude []string `yaml:"keywords_exclude"`
	FreshnessDays   int      `yaml:"freshness_days"`
	MaxItems        int      `yaml:"max_items"`
	OutputPath      string   `yaml:"output_path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Port:        "8081",
		CORSOrigins: []string{"http://localhost:4200"},
		Storage: StorageConfig{
			Path:      "veille-aap.db",
			Namespace: "veille-aap.local.v1",
		},
		Dataset: DatasetConfig{
			Candidates: []string{
				"data/opportunities.seed.json",
				"opportunities.seed.json",
			},
		},
		Collector: CollectorConfig{
			APICandidates: []string{
				"https://aides-territoires.beta.gouv.fr/api/aids/",
				"https://aides-territoires.incubateur.net/api/aids/",
			},
			TerritoryCode: "974",
			IncludeTypes:  []string{"AAP", "AMI"},
			FreshnessDays: 365,
			MaxItems:      300,
			OutputPath:    "data/opportunities.seed.json",
		},
	}
}

// Load reads path when it exists, layering it over the defaults, then
// applies environment overrides. A missing file is not an error; a present
// but invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
	if v := os.Getenv("VEILLE_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("VEILLE_DATASET_CANDIDATES"); v != "" {
		var candidates []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) > 0 {
			cfg.Dataset.Candidates = candidates
		}
	}
	if v := os.Getenv("VEILLE_SEED_OUTPUT"); v != "" {
		cfg.Collector.OutputPath = v
	}
}
