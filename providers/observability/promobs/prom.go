package promobs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sanhariharan/ViralFlow.ai/providers/observability"
)

// Observer adds Prometheus-backed metrics to a base Provider.
type Observer struct {
	observability.Tracer
	observability.Logger

	registerer prometheus.Registerer
	buckets    []float64

	mu         sync.Mutex
	counters   map[string]*counterVec
	histograms map[string]*histogramVec
}

var _ observability.Provider = (*Observer)(nil)

// Option configures an Observer.
type Option func(*Observer)

// WithBuckets overrides the histogram buckets (prometheus.DefBuckets by default).
func WithBuckets(buckets []float64) Option {
	return func(observer *Observer) {
		observer.buckets = buckets
	}
}

// New wraps base. Metrics are registered on registerer as they are first used.
func New(base observability.Provider, registerer prometheus.Registerer, opts ...Option) *Observer {
	if base == nil {
		base = observability.Nop()
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	observer := &Observer{
		Tracer:     base,
		Logger:     base,
		registerer: registerer,
		buckets:    prometheus.DefBuckets,
		counters:   make(map[string]*counterVec),
		histograms: make(map[string]*histogramVec),
	}
	for _, opt := range opts {
		opt(observer)
	}
	return observer
}

// Counter returns the counter registered under name.
func (o *Observer) Counter(name string) observability.Counter {
	return &lazyCounter{observer: o, name: name}
}

// Histogram returns the histogram registered under name.
func (o *Observer) Histogram(name string) observability.Histogram {
	return &lazyHistogram{observer: o, name: name}
}

type counterVec struct {
	vec    *prometheus.CounterVec
	labels []string
}

type histogramVec struct {
	vec    *prometheus.HistogramVec
	labels []string
}

type lazyCounter struct {
	observer *Observer
	name     string
}

func (c *lazyCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	if value < 0 {
		return
	}
	vec, err := c.observer.counterFor(c.name, attrs)
	if err != nil {
		c.observer.Warn(ctx, "prometheus counter unavailable",
			observability.String("metric", c.name), observability.Error(err))
		return
	}
	vec.vec.With(labelValues(vec.labels, attrs)).Add(float64(value))
}

type lazyHistogram struct {
	observer *Observer
	name     string
}

func (h *lazyHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	vec, err := h.observer.histogramFor(h.name, attrs)
	if err != nil {
		h.observer.Warn(ctx, "prometheus histogram unavailable",
			observability.String("metric", h.name), observability.Error(err))
		return
	}
	vec.vec.With(labelValues(vec.labels, attrs)).Observe(value)
}

func (o *Observer) counterFor(name string, attrs []observability.Attribute) (*counterVec, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.counters[name]; ok {
		return existing, nil
	}

	labels := labelNames(attrs)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricName(name) + "_total",
		Help: "ViralFlow counter " + name,
	}, labels)
	if err := o.registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !asAlreadyRegistered(err, &already) {
			return nil, fmt.Errorf("register counter %s: %w", name, err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("register counter %s: collector type mismatch", name)
		}
		vec = existing
	}

	entry := &counterVec{vec: vec, labels: labels}
	o.counters[name] = entry
	return entry, nil
}

func (o *Observer) histogramFor(name string, attrs []observability.Attribute) (*histogramVec, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if existing, ok := o.histograms[name]; ok {
		return existing, nil
	}

	labels := labelNames(attrs)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    MetricName(name),
		Help:    "ViralFlow histogram " + name,
		Buckets: o.buckets,
	}, labels)
	if err := o.registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !asAlreadyRegistered(err, &already) {
			return nil, fmt.Errorf("register histogram %s: %w", name, err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, fmt.Errorf("register histogram %s: collector type mismatch", name)
		}
		vec = existing
	}

	entry := &histogramVec{vec: vec, labels: labels}
	o.histograms[name] = entry
	return entry, nil
}

func asAlreadyRegistered(err error, target *prometheus.AlreadyRegisteredError) bool {
	already, ok := err.(prometheus.AlreadyRegisteredError)
	if ok {
		*target = already
	}
	return ok
}

// MetricName converts a dotted metric name into a valid Prometheus name.
func MetricName(name string) string {
	return sanitize(name)
}

func sanitize(name string) string {
	var builder strings.Builder
	for index, char := range name {
		switch {
		case char >= 'a' && char <= 'z', char >= 'A' && char <= 'Z', char == '_':
			builder.WriteRune(char)
		case char >= '0' && char <= '9':
			if index == 0 {
				builder.WriteRune('_')
			}
			builder.WriteRune(char)
		default:
			builder.WriteRune('_')
		}
	}
	return builder.String()
}

func labelNames(attrs []observability.Attribute) []string {
	seen := make(map[string]struct{}, len(attrs))
	names := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		label := sanitize(attr.Key)
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		names = append(names, label)
	}
	sort.Strings(names)
	return names
}

// labelValues maps attrs onto the fixed label set. Unknown keys are dropped and
// missing labels are left empty.
func labelValues(labels []string, attrs []observability.Attribute) prometheus.Labels {
	values := make(prometheus.Labels, len(labels))
	for _, label := range labels {
		values[label] = ""
	}
	for _, attr := range attrs {
		label := sanitize(attr.Key)
		if _, known := values[label]; known {
			values[label] = fmt.Sprint(attr.Value)
		}
	}
	return values
}
