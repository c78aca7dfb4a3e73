package timing

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/neonaddict/scanbench/bench"
)

const (
	defaultLabelWidth = 24
	indentPerLevel    = "  "
	headerCaption     = "real"

	logMsgWriteFailed = "timing report write failed"
	logAttrError      = "error"
	logAttrLabel      = "label"
)

// Measurement is one completed, labeled block.
type Measurement struct {
	RunID   string        `json:"run_id,omitempty"`
	Label   string        `json:"label"`
	Parent  string        `json:"parent,omitempty"`
	Depth   int           `json:"depth"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Err     string        `json:"error,omitempty"`
}

// Seconds returns the elapsed time in seconds.
func (m Measurement) Seconds() float64 {
	return m.Elapsed.Seconds()
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLabelWidth sets the width the label column is padded to.
func WithLabelWidth(width int) Option {
	return func(r *Reporter) {
		if width > 0 {
			r.labelWidth = width
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger that receives write failures of the report stream.
func WithLogger(logger bench.ContextualLogger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// Reporter records labeled wall-clock measurements and prints them as they complete.
// It is safe for concurrent use; lines from concurrent blocks never interleave.
type Reporter struct {
	mu           sync.Mutex
	out          io.Writer
	labelWidth   int
	now          func() time.Time
	logger       bench.ContextualLogger
	measurements []Measurement
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer, options ...Option) *Reporter {
	if out == nil {
		out = io.Discard
	}

	r := &Reporter{
		out:        out,
		labelWidth: defaultLabelWidth,
		now:        time.Now,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Header writes the caption line of the report.
func (r *Reporter) Header() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.write(context.Background(), "", fmt.Sprintf("%-*s %12s\n", r.labelWidth, "", headerCaption))
}

// Measure runs work and records how long it took under label.
// The context passed to work carries the new block as parent, so blocks measured inside
// work are nested one level deeper. The end is recorded even if work panics; the panic is not recovered.
// The error of work is returned unchanged.
func (r *Reporter) Measure(ctx context.Context, label string, work func(ctx context.Context) error) (elapsed time.Duration, err error) {
	parent, depth := enclosing(ctx)
	inner := context.WithValue(ctx, scopeKey{}, scope{label: label, depth: depth})

	start := r.now()
	completed := false

	defer func() {
		elapsed = r.now().Sub(start)

		m := Measurement{
			RunID:   RunIDFromContext(ctx),
			Label:   label,
			Parent:  parent,
			Depth:   depth,
			Elapsed: elapsed,
		}

		switch {
		case !completed:
			m.Err = "panic"
		case err != nil:
			m.Err = err.Error()
		}

		r.add(ctx, m)
	}()

	err = work(inner)
	completed = true

	return elapsed, err
}

// Record adds a duration measured elsewhere, nested under the block carried by ctx.
func (r *Reporter) Record(ctx context.Context, label string, elapsed time.Duration) {
	parent, depth := enclosing(ctx)

	r.add(ctx, Measurement{
		RunID:   RunIDFromContext(ctx),
		Label:   label,
		Parent:  parent,
		Depth:   depth,
		Elapsed: elapsed,
	})
}

// Measurements returns a copy of everything recorded so far, in completion order.
func (r *Reporter) Measurements() []Measurement {
	r.mu.Lock()
	defer r.mu.Unlock()

	measurements := make([]Measurement, len(r.measurements))
	copy(measurements, r.measurements)

	return measurements
}

// FormatLine renders one report line for a measurement.
func (r *Reporter) FormatLine(m Measurement) string {
	label := strings.Repeat(indentPerLevel, m.Depth) + m.Label

	return fmt.Sprintf("%-*s %12.6f\n", r.labelWidth, label, m.Seconds())
}

func (r *Reporter) add(ctx context.Context, m Measurement) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.measurements = append(r.measurements, m)
	r.write(ctx, m.Label, r.FormatLine(m))
}

// write must be called with r.mu held.
func (r *Reporter) write(ctx context.Context, label, line string) {
	if _, err := io.WriteString(r.out, line); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, logMsgWriteFailed, logAttrError, err.Error(), logAttrLabel, label)
	}
}
