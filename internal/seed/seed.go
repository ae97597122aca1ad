// Package seed loads the activity dataset the store is initialised with.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/xeipuuv/gojsonschema"

	"example.com/activities/internal/domain"
)

//go:embed activities.yaml
var defaultDataset []byte

// ErrInvalidDataset wraps schema and consistency violations in a seed file.
var ErrInvalidDataset = errors.New("invalid seed dataset")

type record struct {
	Name            string   `mapstructure:"name"`
	Description     string   `mapstructure:"description"`
	Schedule        string   `mapstructure:"schedule"`
	MaxParticipants int      `mapstructure:"max_participants"`
	Participants    []string `mapstructure:"participants"`
}

// Default returns the built-in dataset.
func Default() ([]domain.Activity, error) {
	return Load("")
}

// Load reads a dataset from path. The format follows the file extension
// (yaml, json, toml). An empty path selects the embedded default.
func Load(path string) ([]domain.Activity, error) {
	v := viper.New()
	if path == "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(defaultDataset)); err != nil {
			return nil, fmt.Errorf("read embedded seed: %w", err)
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
	}

	if err := validate(v.AllSettings()); err != nil {
		return nil, err
	}

	var records []record
	if err := v.UnmarshalKey("activities", &records); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	activities := make([]domain.Activity, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, dup := seen[rec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate activity %q", ErrInvalidDataset, rec.Name)
		}
		seen[rec.Name] = struct{}{}

		participants := rec.Participants
		if participants == nil {
			participants = []string{}
		}
		activities = append(activities, domain.Activity{
			Name:            rec.Name,
			Description:     rec.Description,
			Schedule:        rec.Schedule,
			MaxParticipants: rec.MaxParticipants,
			Participants:    participants,
		})
	}
	return activities, nil
}

func validate(document map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(datasetSchema),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validate seed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDataset, strings.Join(problems, "; "))
}
