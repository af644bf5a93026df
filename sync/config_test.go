package sync

import (
	"strings"
	"testing"
)

const testYAMLConfig = `
api:
  key: ${BOLDDESK_API_KEY}
  url: https://example.bolddesk.com/api/v1.0
startDate: "2024-01-01"
statePath: "state.json"
`

func testLookupEnv(key string) (string, bool) {
	if key == "BOLDDESK_API_KEY" {
		return "test-api-key", true
	}
	return "", false
}

func TestYAMLConfigUnmarshaler(t *testing.T) {
	cfg, err := YAMLConfigUnmarshaler{}.Unmarshal(testLookupEnv, strings.NewReader(testYAMLConfig))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.Key != "test-api-key" {
		t.Errorf("expected api key expanded from env, have %q", cfg.API.Key)
	}
	if cfg.API.URL != "https://example.bolddesk.com/api/v1.0" {
		t.Errorf("unexpected api url %q", cfg.API.URL)
	}
	if cfg.StartDate != "2024-01-01" {
		t.Errorf("unexpected start date %q", cfg.StartDate)
	}
	if cfg.StatePath != "state.json" {
		t.Errorf("unexpected state path %q", cfg.StatePath)
	}
}

func TestYAMLConfigUnmarshaler_LaterSourcesOverride(t *testing.T) {
	override := `
api:
  url: https://staging.bolddesk.com/api/v1.0
`
	cfg, err := YAMLConfigUnmarshaler{}.Unmarshal(testLookupEnv,
		strings.NewReader(testYAMLConfig), strings.NewReader(override))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.URL != "https://staging.bolddesk.com/api/v1.0" {
		t.Errorf("expected override url, have %q", cfg.API.URL)
	}
	if cfg.API.Key != "test-api-key" {
		t.Errorf("expected key kept from base config, have %q", cfg.API.Key)
	}
}

func TestYAMLConfigUnmarshaler_MissingKey(t *testing.T) {
	yaml := `
api:
  url: https://example.bolddesk.com/api/v1.0
`
	_, err := YAMLConfigUnmarshaler{}.Unmarshal(testLookupEnv, strings.NewReader(yaml))
	if err == nil || !strings.Contains(err.Error(), "api.key") {
		t.Errorf("expected missing api.key error, have %v", err)
	}
}

func TestYAMLConfigUnmarshaler_MissingURL(t *testing.T) {
	yaml := `
api:
  key: abc
`
	_, err := YAMLConfigUnmarshaler{}.Unmarshal(testLookupEnv, strings.NewReader(yaml))
	if err == nil || !strings.Contains(err.Error(), "api.url") {
		t.Errorf("expected missing api.url error, have %v", err)
	}
}
