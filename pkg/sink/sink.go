// Package sink delivers decoded records to their consumers.
package sink

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/imulink/pkg/framework"
	"github.com/robotalks/imulink/pkg/msgs"
)

// Sink receives decoded records.
type Sink interface {
	HandleRecord(context.Context, msgs.Record) error
}

// HandleRecordFunc is func type of Sink.
type HandleRecordFunc func(context.Context, msgs.Record) error

// HandleRecord implements Sink.
func (f HandleRecordFunc) HandleRecord(ctx context.Context, rec msgs.Record) error {
	return f(ctx, rec)
}

// Log writes every record to the info log.
var Log = HandleRecordFunc(func(_ context.Context, rec msgs.Record) error {
	glog.Infof("%s: %s", rec.RecordName(), rec.String())
	return nil
})

// Mux fans records out to multiple sinks.
type Mux struct {
	Sinks []Sink
}

// Add adds more sinks.
func (m *Mux) Add(sinks ...Sink) *Mux {
	m.Sinks = append(m.Sinks, sinks...)
	return m
}

// HandleRecord implements Sink. Every sink sees the record even if
// an earlier one fails.
func (m *Mux) HandleRecord(ctx context.Context, rec msgs.Record) error {
	var errs fx.AggregatedError
	for _, s := range m.Sinks {
		errs.Add(s.HandleRecord(ctx, rec))
	}
	return errs.Aggregate()
}
