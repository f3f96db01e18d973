package accuracy

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/harborline/shipdocs/internal/similarity"
)

// Config holds the tunable scoring parameters. All values have working
// defaults; a YAML file only needs to override what it cares about.
type Config struct {
	DefaultWeight     float64            `yaml:"default_weight"`
	DatePartialCredit float64            `yaml:"date_partial_credit"`
	TextFloor         float64            `yaml:"text_floor"`
	FieldWeights      map[string]float64 `yaml:"field_weights"`
}

type configFile struct {
	Scoring Config `yaml:"scoring"`
}

// DefaultConfig returns the built-in scoring parameters.
func DefaultConfig() Config {
	return Config{
		DefaultWeight:     DefaultFieldWeight,
		DatePartialCredit: similarity.DefaultDatePartialCredit,
		TextFloor:         similarity.DefaultTextFloor,
		FieldWeights:      map[string]float64{},
	}
}

// LoadConfig reads scoring parameters from a YAML file under the top-level
// "scoring" key. Missing values keep their defaults. An empty path returns
// the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "accuracy: read config %s", path)
	}

	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, eris.Wrapf(err, "accuracy: parse config %s", path)
	}

	loaded := file.Scoring
	if loaded.DefaultWeight > 0 {
		cfg.DefaultWeight = loaded.DefaultWeight
	}
	if loaded.DatePartialCredit > 0 {
		cfg.DatePartialCredit = loaded.DatePartialCredit
	}
	if loaded.TextFloor > 0 {
		cfg.TextFloor = loaded.TextFloor
	}
	for field, w := range loaded.FieldWeights {
		cfg.FieldWeights[field] = w
	}
	return cfg, nil
}

// NewScorer builds a document scorer from the config.
func (c Config) NewScorer() *Scorer {
	sim := similarity.NewScorer(
		similarity.WithDatePartialCredit(c.DatePartialCredit),
		similarity.WithTextFloor(c.TextFloor),
	)
	return NewScorer(sim, c.FieldWeights, c.DefaultWeight)
}
