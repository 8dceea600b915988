package streamstats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromPublisher mirrors pipeline events into Prometheus collectors registered
// on the given registerer.
type PromPublisher struct {
	frames         *prometheus.CounterVec
	frameBytes     prometheus.Histogram
	decodeFailures prometheus.Counter
	ignored        *prometheus.CounterVec
	sendsDropped   prometheus.Counter
	reconnects     prometheus.Counter
	exhausted      prometheus.Counter
	connected      prometheus.Gauge
	reconnectDelay prometheus.Gauge
}

func NewPromPublisher(reg prometheus.Registerer) *PromPublisher {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PromPublisher{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dash_stream_frames_total",
			Help: "Frames received from the telemetry stream, by envelope type.",
		}, []string{"kind"}),
		frameBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dash_stream_frame_bytes",
			Help:    "Size of received frames.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dash_stream_decode_failures_total",
			Help: "Frames discarded because they could not be decoded.",
		}),
		ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dash_stream_messages_ignored_total",
			Help: "Well-formed frames with an unrecognised type.",
		}, []string{"kind"}),
		sendsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dash_stream_sends_dropped_total",
			Help: "Outbound messages dropped because the stream was not open.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dash_stream_reconnects_scheduled_total",
			Help: "Reconnection attempts scheduled.",
		}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dash_stream_retries_exhausted_total",
			Help: "Times the client gave up reconnecting.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dash_stream_connected",
			Help: "1 while the telemetry stream is open.",
		}),
		reconnectDelay: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dash_stream_reconnect_delay_seconds",
			Help: "Delay of the most recently scheduled reconnect.",
		}),
	}

	reg.MustRegister(
		p.frames, p.frameBytes, p.decodeFailures, p.ignored, p.sendsDropped,
		p.reconnects, p.exhausted, p.connected, p.reconnectDelay,
	)
	return p
}

func (p *PromPublisher) Publish(event Event) {
	switch e := event.(type) {
	case ConnectionStateChanged:
		if e.Connected {
			p.connected.Set(1)
		} else {
			p.connected.Set(0)
		}
	case FrameReceived:
		p.frames.WithLabelValues(e.Kind).Inc()
		p.frameBytes.Observe(float64(e.Bytes))
	case DecodeFailed:
		p.decodeFailures.Inc()
	case MessageIgnored:
		p.ignored.WithLabelValues(e.Kind).Inc()
	case SendDropped:
		p.sendsDropped.Inc()
	case ReconnectScheduled:
		p.reconnects.Inc()
		p.reconnectDelay.Set(e.Delay.Seconds())
	case RetriesExhausted:
		p.exhausted.Inc()
	}
}
