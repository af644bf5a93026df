package sync

import (
	"fmt"
	"os"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// StateStore persists the replication watermark per stream. Implementations
// must never surface a partially written value after a crash.
type StateStore interface {
	Watermark(stream StreamDef) (time.Time, bool, error)
	SetWatermark(stream StreamDef, value time.Time) error
}

// FileStateStore keeps watermarks in a single JSON document:
//
//	{"bookmarks":{"tickets":{"updated_on":"2024-06-01T00:00:00.000Z"}}}
//
// Writes go through a temp file and rename, so an interrupt mid-checkpoint
// leaves the previous document intact.
type FileStateStore struct {
	Path string
}

func bookmarkPath(stream StreamDef) string {
	return "bookmarks." + stream.Name + "." + strcase.ToSnake(stream.ReplicationField)
}

func (s FileStateStore) Watermark(stream StreamDef) (time.Time, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read state file %w", err)
	}
	res := gjson.GetBytes(data, bookmarkPath(stream))
	if !res.Exists() || res.String() == "" {
		return time.Time{}, false, nil
	}
	value, err := time.Parse(time.RFC3339, res.String())
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse watermark for stream %s %w", stream.Name, err)
	}
	return value, true, nil
}

func (s FileStateStore) SetWatermark(stream StreamDef, value time.Time) error {
	document := "{}"
	if data, err := os.ReadFile(s.Path); err == nil {
		document = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read state file %w", err)
	}
	document, err := sjson.Set(document, bookmarkPath(stream), value.UTC().Format(QueryTimestampFormat))
	if err != nil {
		return fmt.Errorf("failed to update state document %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(document), 0o600); err != nil {
		return fmt.Errorf("failed to write state file %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("failed to replace state file %w", err)
	}
	return nil
}
