package zwave

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urmzd/zwhub/pkg/unit"
)

var metrics = struct {
	frames  *prometheus.CounterVec
	polls   *prometheus.CounterVec
	retries *prometheus.CounterVec
	lag     *prometheus.GaugeVec
	status  *prometheus.GaugeVec
}{
	frames: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zwhub_frames_total",
			Help: "Serial API data frames by direction.",
		},
		[]string{"direction"},
	),
	polls: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zwhub_unit_poll_total",
			Help: "Unit polls by result.",
		},
		[]string{"result"},
	),
	retries: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zwhub_unit_retries_total",
			Help: "Poll retries by unit.",
		},
		[]string{"unit"},
	),
	lag: prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zwhub_unit_poll_lag_seconds",
			Help: "How far behind schedule the last poll of a unit ran.",
		},
		[]string{"unit"},
	),
	status: prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zwhub_unit_status",
			Help: "1 for the current status of each unit, 0 otherwise.",
		},
		[]string{"unit", "status"},
	),
}

func init() {
	prometheus.MustRegister(metrics.frames, metrics.polls, metrics.retries, metrics.lag, metrics.status)
}

var allStatuses = []unit.Status{unit.StatusReady, unit.StatusError, unit.StatusFailed, unit.StatusMissing}

func observeStatus(u *unit.Unit) {
	for _, s := range allStatuses {
		v := 0.0
		if u.Status() == s {
			v = 1
		}
		metrics.status.WithLabelValues(u.Name(), s.String()).Set(v)
	}
}

func forgetUnit(name string) {
	metrics.lag.DeleteLabelValues(name)
	metrics.retries.DeleteLabelValues(name)
	for _, s := range allStatuses {
		metrics.status.DeleteLabelValues(name, s.String())
	}
}
