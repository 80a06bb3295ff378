// Package timing keeps named wall-clock timers for the phases of a step.
// Every completed interval is also observed on a Prometheus histogram
// labelled by timer name.
package timing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collection owns a set of timers. It is not safe for concurrent use.
type Collection struct {
	timers  map[string]*Timer
	order   []string
	seconds *prometheus.HistogramVec
	now     func() time.Time
}

// New builds a collection whose histogram is registered on reg. A nil reg
// keeps the histogram private to the collection.
func New(reg prometheus.Registerer) *Collection {
	return &Collection{
		timers: make(map[string]*Timer),
		seconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mhdsim",
			Name:      "timer_seconds",
			Help:      "Wall-clock time spent in each timed phase of a step",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}, []string{"timer"}),
		now: time.Now,
	}
}

// Timer returns the named timer, creating it on first use.
func (c *Collection) Timer(name string) *Timer {
	if t, ok := c.timers[name]; ok {
		return t
	}
	t := &Timer{name: name, c: c, obs: c.seconds.WithLabelValues(name)}
	c.timers[name] = t
	c.order = append(c.order, name)
	return t
}

// Elapsed returns the accumulated time of the named timer.
func (c *Collection) Elapsed(name string) time.Duration {
	if t, ok := c.timers[name]; ok {
		return t.total
	}
	return 0
}

// Names lists the timers in creation order.
func (c *Collection) Names() []string {
	return append([]string(nil), c.order...)
}

// Histogram exposes the underlying vector, mostly for tests.
func (c *Collection) Histogram() *prometheus.HistogramVec { return c.seconds }

// Report formats the totals, longest first.
func (c *Collection) Report() string {
	names := c.Names()
	sort.SliceStable(names, func(i, j int) bool {
		return c.timers[names[i]].total > c.timers[names[j]].total
	})
	var sb strings.Builder
	for _, n := range names {
		t := c.timers[n]
		fmt.Fprintf(&sb, "%-20s %12s  (%d calls)\n", n, t.total.Round(time.Microsecond), t.calls)
	}
	return sb.String()
}

type Timer struct {
	name    string
	c       *Collection
	obs     prometheus.Observer
	start   time.Time
	running bool
	total   time.Duration
	calls   int
}

func (t *Timer) Name() string { return t.name }

func (t *Timer) Begin() {
	t.start = t.c.now()
	t.running = true
}

// End stops the timer and records the interval. End without Begin is a no-op.
func (t *Timer) End() {
	if !t.running {
		return
	}
	d := t.c.now().Sub(t.start)
	t.running = false
	t.total += d
	t.calls++
	t.obs.Observe(d.Seconds())
}

func (t *Timer) Calls() int { return t.calls }

func (t *Timer) Total() time.Duration { return t.total }
