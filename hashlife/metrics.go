package hashlife

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodesInterned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hashlife_nodes_interned_total",
		Help: "Interior nodes created by canonical tables",
	})

	memoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hashlife_memo_lookups_total",
		Help: "Memoized advance lookups by result",
	}, []string{"result"})
	memoHits   = memoLookups.WithLabelValues("hit")
	memoMisses = memoLookups.WithLabelValues("miss")

	generationsAdvanced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hashlife_generations_total",
		Help: "Generations advanced by all universes",
	})

	rootLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hashlife_root_level",
		Help: "Level of the most recently stepped root",
	})
)
