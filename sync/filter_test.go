package sync

import (
	"testing"
	"time"
)

func TestFilterBuilder_FullMode(t *testing.T) {
	params, err := FilterBuilder{}.Build(FilterFull, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if params.OrderField != "createdon" || params.OrderDirection != "asc" {
		t.Errorf("expected ascending order on createdon, have %s %s", params.OrderField, params.OrderDirection)
	}
	if params.Query != "" {
		t.Errorf("expected no lower bound without a start date, have %q", params.Query)
	}
}

func TestFilterBuilder_FullModeWithStartDate(t *testing.T) {
	params, err := FilterBuilder{StartDate: "2024-01-01"}.Build(FilterFull, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	expected := `createdon:{"from":"2024-01-01"}`
	if params.Query != expected {
		t.Errorf("expected query %s but have: %s", expected, params.Query)
	}
}

func TestFilterBuilder_IncrementalMode(t *testing.T) {
	watermark := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	params, err := FilterBuilder{StartDate: "2024-01-01"}.Build(FilterIncremental, watermark)
	if err != nil {
		t.Fatal(err)
	}
	if params.OrderField != "updatedon" || params.OrderDirection != "desc" {
		t.Errorf("expected descending order on updatedon, have %s %s", params.OrderField, params.OrderDirection)
	}
	expected := `updatedon:{"from":"2024-06-01T00:00:00.000Z"}`
	if params.Query != expected {
		t.Errorf("expected query %s but have: %s", expected, params.Query)
	}
}

func TestFilterBuilder_IncrementalBoundIsMillisecondPrecision(t *testing.T) {
	watermark := time.Date(2024, 6, 1, 12, 30, 45, 987654321, time.UTC)
	params, err := FilterBuilder{}.Build(FilterIncremental, watermark)
	if err != nil {
		t.Fatal(err)
	}
	expected := `updatedon:{"from":"2024-06-01T12:30:45.987Z"}`
	if params.Query != expected {
		t.Errorf("expected query %s but have: %s", expected, params.Query)
	}
}

func TestFilterBuilder_NoneMode(t *testing.T) {
	params, err := FilterBuilder{StartDate: "2024-01-01"}.Build(FilterNone, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if params.OrderField != "" || params.Query != "" {
		t.Errorf("expected empty params for FilterNone, have %+v", params)
	}
}
