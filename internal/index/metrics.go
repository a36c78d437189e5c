package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Index metrics, labeled by engine so octrees and tetrees report separately.
// Counters are atomic and are not guarded by the tree lock.
var (
	insertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arxspace_inserts_total",
		Help: "Total entity insertions",
	}, []string{"engine"})

	removesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arxspace_removes_total",
		Help: "Total entity removals",
	}, []string{"engine"})

	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arxspace_updates_total",
		Help: "Total entity updates",
	}, []string{"engine"})

	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arxspace_queries_total",
		Help: "Total queries by kind",
	}, []string{"engine", "kind"})

	subdivisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arxspace_subdivisions_total",
		Help: "Total node subdivisions",
	}, []string{"engine"})

	entitiesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arxspace_entities",
		Help: "Entities currently stored",
	}, []string{"engine"})

	nodesGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arxspace_nodes",
		Help: "Nodes currently allocated",
	}, []string{"engine"})
)
