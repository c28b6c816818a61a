package telemetry

import (
	"context"
	"time"

	"github.com/nerrad567/camportal/internal/infrastructure/logging"
	"github.com/nerrad567/camportal/internal/infrastructure/mqtt"
)

const defaultQueueSize = 256

// Publisher publishes a JSON message. *mqtt.Client satisfies it.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// MetricsWriter records an event point. *influxdb.Client satisfies it.
type MetricsWriter interface {
	WritePortalEvent(kind, outcome string, status int, at time.Time)
}

// Recorder queues events for asynchronous delivery.
type Recorder struct {
	deviceID  string
	publisher Publisher
	metrics   MetricsWriter
	logger    *logging.Logger
	queue     chan Event
	now       func() time.Time
}

// Options configures a Recorder. Publisher and Metrics may be nil.
type Options struct {
	DeviceID  string
	Publisher Publisher
	Metrics   MetricsWriter
	Logger    *logging.Logger
	QueueSize int
}

// NewRecorder creates a Recorder. Run must be started for events to flow.
func NewRecorder(opts Options) *Recorder {
	size := opts.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{
		deviceID:  opts.DeviceID,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		logger:    logger.With("component", "telemetry"),
		queue:     make(chan Event, size),
		now:       time.Now,
	}
}

// Record queues e, stamping DeviceID and Timestamp when unset. Safe on a
// nil Recorder.
func (r *Recorder) Record(e Event) {
	if r == nil {
		return
	}
	if e.DeviceID == "" {
		e.DeviceID = r.deviceID
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now().UTC()
	}

	select {
	case r.queue <- e:
	default:
		r.logger.Warn("telemetry queue full, event dropped", "kind", e.Kind, "outcome", e.Outcome)
	}
}

// Run delivers queued events until ctx is cancelled, then drains what is
// already queued and returns nil.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case e := <-r.queue:
			r.deliver(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-r.queue:
					r.deliver(e)
				default:
					return nil
				}
			}
		}
	}
}

func (r *Recorder) deliver(e Event) {
	r.logger.Info("portal event",
		"kind", e.Kind,
		"outcome", e.Outcome,
		"status", e.Status,
		"detail", e.Detail,
	)

	if r.publisher != nil {
		if err := r.publisher.PublishJSON(mqtt.Topics{}.Event(e.Kind), e); err != nil {
			r.logger.Warn("publishing portal event failed", "kind", e.Kind, "error", err)
		}
	}
	if r.metrics != nil {
		r.metrics.WritePortalEvent(e.Kind, e.Outcome, e.Status, e.Timestamp)
	}
}
