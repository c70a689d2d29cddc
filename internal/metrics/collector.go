// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 chastityOS Authors

// Package metrics exposes the sync core's component statistics as Prometheus
// metrics. Values are read from each component's Stats()/Snapshot() at
// scrape time, so the hot paths carry no instrumentation of their own.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thef4tdaddy/chastityOS-sub012/internal/cache"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/prefetch"
	"github.com/thef4tdaddy/chastityOS-sub012/internal/request"
	"github.com/thef4tdaddy/chastityOS-sub012/models"
)

const namespace = "chastityos"

// Providers carries the stat sources the collector reads at scrape time.
// Nil fields are skipped, so partial wiring is fine.
type Providers struct {
	Cache    interface{ Stats() cache.Stats }
	Requests interface{ Stats() request.Stats }
	Queue    interface{ Snapshot() models.SyncQueueSnapshot }
	Prefetch interface{ Stats() prefetch.Stats }
}

// Collector implements prometheus.Collector over Providers.
type Collector struct {
	providers Providers

	cacheEntries   *prometheus.Desc
	cacheCapacity  *prometheus.Desc
	cacheHits      *prometheus.Desc
	cacheMisses    *prometheus.Desc
	cacheEvictions *prometheus.Desc

	requestsInFlight  *prometheus.Desc
	requestsDedupHits *prometheus.Desc
	requestsBatches   *prometheus.Desc
	requestsFallbacks *prometheus.Desc

	queueOperations *prometheus.Desc

	prefetchRoutes    *prometheus.Desc
	prefetchDataKeys  *prometheus.Desc
	prefetchObservers *prometheus.Desc
	prefetchLoads     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds the collector. Register it with a registry, or use
// Register.
func NewCollector(providers Providers) *Collector {
	return &Collector{
		providers: providers,

		cacheEntries: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "entries"),
			"Entries currently held by the result cache.",
			[]string{"state"}, nil,
		),
		cacheCapacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "capacity"),
			"Configured result cache capacity.",
			nil, nil,
		),
		cacheHits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "hits_total"),
			"Result cache lookups answered with a live value.",
			nil, nil,
		),
		cacheMisses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "misses_total"),
			"Result cache lookups that found nothing usable.",
			nil, nil,
		),
		cacheEvictions: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "cache", "evictions_total"),
			"Entries evicted to make room for new keys.",
			nil, nil,
		),

		requestsInFlight: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "requests", "in_flight"),
			"Dedup keys with a live dispatch.",
			nil, nil,
		),
		requestsDedupHits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "requests", "dedup_hits_total"),
			"Calls that joined an existing flight instead of dispatching.",
			nil, nil,
		),
		requestsBatches: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "requests", "batches_flushed_total"),
			"Batches dispatched to the remote store.",
			nil, nil,
		),
		requestsFallbacks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "requests", "fallbacks_total"),
			"Requests dispatched individually after queue exhaustion.",
			nil, nil,
		),

		queueOperations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "sync_queue", "operations"),
			"Sync queue depth by operation status.",
			[]string{"status"}, nil,
		),

		prefetchRoutes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "prefetch", "routes"),
			"Routes currently marked prefetched.",
			nil, nil,
		),
		prefetchDataKeys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "prefetch", "data_keys"),
			"Resolved prefetched data keys held.",
			nil, nil,
		),
		prefetchObservers: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "prefetch", "observers"),
			"Connected viewport and hover observers.",
			nil, nil,
		),
		prefetchLoads: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "prefetch", "loads_total"),
			"Prefetch loads by result.",
			[]string{"result"}, nil,
		),
	}
}

// Register builds a collector over providers and registers it with reg.
func Register(reg prometheus.Registerer, providers Providers) (*Collector, error) {
	c := NewCollector(providers)
	if err := reg.Register(c); err != nil {
		return nil, fmt.Errorf("register sync core collector: %w", err)
	}
	return c, nil
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.cacheEntries, c.cacheCapacity, c.cacheHits, c.cacheMisses,
		c.cacheEvictions,
		c.requestsInFlight, c.requestsDedupHits, c.requestsBatches,
		c.requestsFallbacks,
		c.queueOperations,
		c.prefetchRoutes, c.prefetchDataKeys, c.prefetchObservers,
		c.prefetchLoads,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if p := c.providers.Cache; p != nil {
		st := p.Stats()
		ch <- prometheus.MustNewConstMetric(c.cacheEntries, prometheus.GaugeValue, float64(st.Valid), "valid")
		ch <- prometheus.MustNewConstMetric(c.cacheEntries, prometheus.GaugeValue, float64(st.Expired), "expired")
		ch <- prometheus.MustNewConstMetric(c.cacheCapacity, prometheus.GaugeValue, float64(st.MaxEntries))
		ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(st.Hits))
		ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(st.Misses))
		ch <- prometheus.MustNewConstMetric(c.cacheEvictions, prometheus.CounterValue, float64(st.Evictions))
	}

	if p := c.providers.Requests; p != nil {
		st := p.Stats()
		ch <- prometheus.MustNewConstMetric(c.requestsInFlight, prometheus.GaugeValue, float64(st.InFlight))
		ch <- prometheus.MustNewConstMetric(c.requestsDedupHits, prometheus.CounterValue, float64(st.DedupHits))
		ch <- prometheus.MustNewConstMetric(c.requestsBatches, prometheus.CounterValue, float64(st.BatchesFlushed))
		ch <- prometheus.MustNewConstMetric(c.requestsFallbacks, prometheus.CounterValue, float64(st.Fallbacks))
	}

	if p := c.providers.Queue; p != nil {
		snap := p.Snapshot()
		ch <- prometheus.MustNewConstMetric(c.queueOperations, prometheus.GaugeValue, float64(snap.Pending), string(models.StatusPending))
		ch <- prometheus.MustNewConstMetric(c.queueOperations, prometheus.GaugeValue, float64(snap.Running), string(models.StatusRunning))
		ch <- prometheus.MustNewConstMetric(c.queueOperations, prometheus.GaugeValue, float64(snap.Synced), string(models.StatusSynced))
		ch <- prometheus.MustNewConstMetric(c.queueOperations, prometheus.GaugeValue, float64(snap.Failed), string(models.StatusFailed))
	}

	if p := c.providers.Prefetch; p != nil {
		st := p.Stats()
		ch <- prometheus.MustNewConstMetric(c.prefetchRoutes, prometheus.GaugeValue, float64(st.PrefetchedRoutes))
		ch <- prometheus.MustNewConstMetric(c.prefetchDataKeys, prometheus.GaugeValue, float64(st.PrefetchedData))
		ch <- prometheus.MustNewConstMetric(c.prefetchObservers, prometheus.GaugeValue, float64(st.ActiveObservers))
		ch <- prometheus.MustNewConstMetric(c.prefetchLoads, prometheus.CounterValue, float64(st.Completed), "completed")
		ch <- prometheus.MustNewConstMetric(c.prefetchLoads, prometheus.CounterValue, float64(st.Failed), "failed")
	}
}
