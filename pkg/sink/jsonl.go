package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/robotalks/imulink/pkg/msgs"
)

// Envelope is the JSON form of a record.
type Envelope struct {
	TS     string      `json:"ts"`
	Record string      `json:"record"`
	Data   msgs.Record `json:"data"`
}

// NewEnvelope stamps a record with the host time.
func NewEnvelope(rec msgs.Record, now time.Time) Envelope {
	return Envelope{
		TS:     now.UTC().Format(time.RFC3339Nano),
		Record: rec.RecordName(),
		Data:   rec,
	}
}

// JSONLWriter writes one JSON object per line.
type JSONLWriter struct {
	Now func() time.Time

	enc  *json.Encoder
	lock sync.Mutex
}

// NewJSONLWriter creates a JSONLWriter.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{Now: time.Now, enc: enc}
}

// HandleRecord implements Sink.
func (j *JSONLWriter) HandleRecord(_ context.Context, rec msgs.Record) error {
	j.lock.Lock()
	defer j.lock.Unlock()
	return j.enc.Encode(NewEnvelope(rec, j.Now()))
}
