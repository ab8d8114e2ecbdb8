// Package importer applies an activity import stream to a layer.
//
// The stream is a sequence of JSON objects, usually one per line. An object
// with an "_id" is an activity record and is added if it also has a "type".
// Other objects carry bookkeeping:
//
//	{"count": 120}        more activities are on their way
//	{"delete": [4, 9]}    ids to remove
//	{"idx": 17}           the server is indexing
//	{"msg": "..."}        a status line for the user
//	{"done": true}        end of stream
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/gogpu/dotlayer"
	"github.com/gogpu/dotlayer/activity"
)

// ErrMalformed is returned for a stream element that is not a JSON object.
var ErrMalformed = errors.New("importer: malformed message")

// ProgressInterval is the number of imported activities between progress
// reports.
const ProgressInterval = 5

// Sink receives the changes in a stream. *dotlayer.Layer is a Sink.
type Sink interface {
	Add(spec activity.Spec) error
	Remove(id int64) bool
}

var _ Sink = (*dotlayer.Layer)(nil)

// Progress is reported every ProgressInterval imports.
type Progress struct {
	Imported int
	// Expected is the sum of all count messages so far, 0 if unknown.
	Expected int
	// Message is the latest status line.
	Message string
}

// Fraction returns Imported/Expected, or -1 while Expected is unknown.
func (p Progress) Fraction() float64 {
	if p.Expected <= 0 {
		return -1
	}
	return float64(p.Imported) / float64(p.Expected)
}

// Summary is the outcome of Run.
type Summary struct {
	Added    int
	Deleted  int
	Skipped  int // records without a type
	Failed   int // records the sink rejected
	Expected int
	Messages []string
	Done     bool
}

// Option configures Run.
type Option func(*config)

type config struct {
	progress func(Progress)
}

// WithProgress calls fn every ProgressInterval imports and once at the end.
func WithProgress(fn func(Progress)) Option {
	return func(c *config) {
		c.progress = fn
	}
}

type message struct {
	ID     *int64  `json:"_id"`
	Type   *string `json:"type"`
	Count  *int    `json:"count"`
	Delete []int64 `json:"delete"`
	Idx    *int    `json:"idx"`
	Msg    *string `json:"msg"`
	Done   *bool   `json:"done"`
}

// Run reads messages from r until a done message or EOF and applies them to
// sink. Records the sink rejects are counted and logged, not returned. The
// caller resets the layer afterwards.
func Run(ctx context.Context, r io.Reader, sink Sink, opts ...Option) (Summary, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	log := dotlayer.Logger()

	var (
		sum  Summary
		last string
	)
	report := func() {
		if cfg.progress != nil {
			cfg.progress(Progress{Imported: sum.Added, Expected: sum.Expected, Message: last})
		}
	}

	dec := json.NewDecoder(r)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return sum, fmt.Errorf("importer: message %d: %w", n, err)
		}
		var m message
		if err := json.Unmarshal(raw, &m); err != nil {
			return sum, fmt.Errorf("%w %d: %v", ErrMalformed, n, err)
		}

		if m.ID == nil {
			switch {
			case m.Idx != nil:
				log.Debug("importer: indexing", "idx", *m.Idx)
			case m.Count != nil:
				sum.Expected += *m.Count
			case m.Delete != nil:
				for _, id := range m.Delete {
					if sink.Remove(id) {
						sum.Deleted++
					}
				}
			case m.Done != nil:
				sum.Done = true
			case m.Msg != nil:
				last = *m.Msg
				sum.Messages = append(sum.Messages, last)
				log.Info("importer: " + last)
			}
			if sum.Done {
				break
			}
			continue
		}

		if m.Type == nil || *m.Type == "" {
			sum.Skipped++
			continue
		}
		var spec activity.Spec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return sum, fmt.Errorf("%w %d: %v", ErrMalformed, n, err)
		}
		if err := sink.Add(spec); err != nil {
			sum.Failed++
			log.Warn("importer: activity rejected", "id", spec.ID, "err", err)
			continue
		}
		sum.Added++
		if sum.Added%ProgressInterval == 0 {
			report()
		}
	}
	report()
	log.Info("importer: finished", "added", sum.Added, "deleted", sum.Deleted,
		"skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}
