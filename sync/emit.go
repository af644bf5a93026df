package sync

import (
	"fmt"
	"io"

	"github.com/tidwall/sjson"
)

// RecordWriter receives shaped records in response order. Implementations
// must tolerate at-least-once delivery across run boundaries - the
// pipeline never deduplicates.
type RecordWriter interface {
	WriteRecord(stream string, record string) error
}

// JSONLinesWriter emits one envelope per record:
//
//	{"type":"RECORD","stream":"tickets","record":{...}}
type JSONLinesWriter struct {
	Out io.Writer
}

func (w JSONLinesWriter) WriteRecord(stream string, record string) error {
	envelope, err := sjson.Set(`{"type":"RECORD"}`, "stream", stream)
	if err == nil {
		envelope, err = sjson.SetRaw(envelope, "record", record)
	}
	if err != nil {
		return fmt.Errorf("failed to build record envelope %w", err)
	}
	if _, err := fmt.Fprintln(w.Out, envelope); err != nil {
		return fmt.Errorf("failed to write record %w", err)
	}
	return nil
}
