// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vechain/stakevault/log"
)

const namespace = "stakevault"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches the meters to prometheus. It can not be undone.
func InitializePrometheusMetrics() {
	if _, ok := metrics.(*promRegistry); !ok {
		metrics = &promRegistry{}
	}
}

// promRegistry memoizes collectors by name, as prometheus rejects a second registration.
type promRegistry struct {
	collectors sync.Map
}

func load[T prometheus.Collector](r *promRegistry, name string, create func() T) T {
	if c, ok := r.collectors.Load(name); ok {
		return c.(T)
	}
	c, loaded := r.collectors.LoadOrStore(name, create())
	if !loaded {
		if err := prometheus.Register(c.(T)); err != nil {
			logger.Warn("unable to register metric", "name", name, "err", err)
		}
	}
	return c.(T)
}

func (r *promRegistry) counter(name string) CountMeter {
	return &promCounter{load(r, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
	})}
}

func (r *promRegistry) counterVec(name string, labels []string) CountVecMeter {
	return &promCounterVec{load(r, name, func() *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
	})}
}

func (r *promRegistry) histogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return &promHistogramVec{load(r, name, func() *prometheus.HistogramVec {
		floatBuckets := make([]float64, 0, len(buckets))
		for _, b := range buckets {
			floatBuckets = append(floatBuckets, float64(b))
		}
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets,
		}, labels)
	})}
}

func (r *promRegistry) gauge(name string) GaugeMeter {
	return &promGauge{load(r, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
	})}
}

func (r *promRegistry) handler() http.Handler { return promhttp.Handler() }

type promCounter struct{ c prometheus.Counter }

func (m *promCounter) Add(i int64) { m.c.Add(float64(i)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (m *promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	m.c.With(labels).Add(float64(i))
}

type promHistogramVec struct{ h *prometheus.HistogramVec }

func (m *promHistogramVec) ObserveWithLabels(i int64, labels map[string]string) {
	m.h.With(labels).Observe(float64(i))
}

type promGauge struct{ g prometheus.Gauge }

func (m *promGauge) Add(i int64) { m.g.Add(float64(i)) }
func (m *promGauge) Set(i int64) { m.g.Set(float64(i)) }
