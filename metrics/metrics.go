// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes process wide meters. Meters are no-ops until
// InitializePrometheusMetrics is called.
package metrics

import (
	"net/http"
	"sync"
)

var metrics registry = noopRegistry{}

type registry interface {
	counter(name string) CountMeter
	counterVec(name string, labels []string) CountVecMeter
	histogramVec(name string, labels []string, buckets []int64) HistogramVecMeter
	gauge(name string) GaugeMeter
	handler() http.Handler
}

// BucketHTTPReqs are the buckets for request durations in milliseconds.
var BucketHTTPReqs = []int64{
	0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
	150, 200, 300, 400, 500, 750, 1000,
	1500, 2000, 3000, 4000, 5000, 10000,
}

type CountMeter interface {
	Add(int64)
}

type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// HTTPHandler serves the metrics in the exposition format.
func HTTPHandler() http.Handler { return metrics.handler() }

func Counter(name string) CountMeter { return metrics.counter(name) }

func CounterVec(name string, labels []string) CountVecMeter { return metrics.counterVec(name, labels) }

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return metrics.histogramVec(name, labels, buckets)
}

func Gauge(name string) GaugeMeter { return metrics.gauge(name) }

// LazyLoad defers creating a meter until first use, so package level meters
// declared before InitializePrometheusMetrics still reach prometheus.
func LazyLoad[T any](f func() T) func() T {
	var (
		once  sync.Once
		meter T
	)
	return func() T {
		once.Do(func() { meter = f() })
		return meter
	}
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}
