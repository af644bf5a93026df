package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func ticketsStream(t *testing.T) StreamDef {
	t.Helper()
	for _, s := range Streams() {
		if s.Name == "tickets" {
			return s
		}
	}
	t.Fatal("tickets stream not configured")
	return StreamDef{}
}

func TestFileStateStore_MissingFile(t *testing.T) {
	store := FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}
	_, ok, err := store.Watermark(ticketsStream(t))
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected no watermark for a missing state file")
	}
}

func TestFileStateStore_RoundTrip(t *testing.T) {
	store := FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}
	stream := ticketsStream(t)

	value := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)
	if err := store.SetWatermark(stream, value); err != nil {
		t.Fatal(err)
	}

	have, ok, err := store.Watermark(stream)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a watermark after SetWatermark")
	}
	if !have.Equal(value) {
		t.Errorf("expected watermark %s, have %s", value, have)
	}
}

func TestFileStateStore_DocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := FileStateStore{Path: path}

	value := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := store.SetWatermark(ticketsStream(t), value); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	have := gjson.GetBytes(data, "bookmarks.tickets.updated_on").String()
	if have != "2024-06-01T00:00:00.000Z" {
		t.Errorf("unexpected state document %s", data)
	}
}

func TestFileStateStore_OverwritePreservesOtherBookmarks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"bookmarks":{"agents":{"updated_on":"2023-01-01T00:00:00.000Z"}}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	store := FileStateStore{Path: path}

	if err := store.SetWatermark(ticketsStream(t), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if gjson.GetBytes(data, "bookmarks.agents.updated_on").String() != "2023-01-01T00:00:00.000Z" {
		t.Errorf("expected unrelated bookmarks preserved, have %s", data)
	}
	if gjson.GetBytes(data, "bookmarks.tickets.updated_on").String() != "2024-06-01T00:00:00.000Z" {
		t.Errorf("expected tickets bookmark written, have %s", data)
	}
}
