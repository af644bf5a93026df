package sync

import (
	"fmt"
	"io"

	"go.uber.org/config"
)

type Config struct {
	API APISettings
	// StartDate is the optional global floor for initial syncs,
	// an ISO date or date-time string, e.g. 2024-01-01 or 2024-01-01T03:00:00Z.
	StartDate string
	// StatePath locates the replication state file.
	StatePath string
}

type APISettings struct {
	// Key is the BoldDesk API key, sent as the x-api-key header.
	Key string
	// URL is the API base including the version path,
	// e.g. https://mycompany.bolddesk.com/api/v1.0
	URL string
}

type YAMLConfigUnmarshaler struct{}

// Unmarshal reads config from the given YAML sources, expanding ${VAR}
// references via lookupEnv. Later sources override earlier ones.
func (u YAMLConfigUnmarshaler) Unmarshal(lookupEnv func(string) (string, bool), sources ...io.Reader) (Config, error) {
	var result Config
	var options []config.YAMLOption
	for _, s := range sources {
		options = append(options, config.Source(s))
	}
	options = append(options, config.Expand(lookupEnv))
	yaml, err := config.NewYAML(options...)
	if err != nil {
		return result, fmt.Errorf("failed to read yaml config %w", err)
	}
	readError := func(key string, cause error) error {
		return fmt.Errorf("failed to read '%s' from yaml config %w", key, cause)
	}
	key := "api"
	err = yaml.Get(key).Populate(&result.API)
	if err != nil {
		return result, readError(key, err)
	}
	key = "startDate"
	if yaml.Get(key).HasValue() {
		result.StartDate = yaml.Get(key).String()
	}
	key = "statePath"
	if yaml.Get(key).HasValue() {
		result.StatePath = yaml.Get(key).String()
	}

	if result.API.URL == "" {
		return result, fmt.Errorf("missing 'api.url' in yaml config")
	}
	if result.API.Key == "" {
		return result, fmt.Errorf("missing 'api.key' in yaml config")
	}

	return result, nil
}
