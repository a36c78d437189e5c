package main

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/arx-os/arxspace/internal/index"
	"github.com/arx-os/arxspace/pkg/geometry"
)

var (
	flagBenchCount   int
	flagBenchQueries int
	flagBenchSeed    int64
	flagBenchExtent  float64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure insertion and query throughput on synthetic data",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchCount, "count", 100000, "entities to insert")
	benchCmd.Flags().IntVar(&flagBenchQueries, "queries", 1000, "queries per shape")
	benchCmd.Flags().Int64Var(&flagBenchSeed, "seed", 1, "random seed")
	benchCmd.Flags().Float64Var(&flagBenchExtent, "extent", 1<<20, "side length of the populated cube")
}

func runBench(cmd *cobra.Command, args []string) error {
	st, err := newStore(flagEngine, appConfig)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(flagBenchSeed))

	positions := make([]geometry.Point3D, flagBenchCount)
	labels := make([]string, flagBenchCount)
	for i := range positions {
		positions[i] = geometry.NewPoint3D(
			rng.Float64()*flagBenchExtent,
			rng.Float64()*flagBenchExtent,
			rng.Float64()*flagBenchExtent)
		labels[i] = "bench"
	}

	start := time.Now()
	ids, errs := st.InsertBatch(positions, labels, uint8(flagLevel))
	insertDur := time.Since(start)
	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	cmd.Printf("insert: %d entities in %v (%.0f/s, %d failed), %d nodes\n",
		len(ids)-failed, insertDur,
		float64(len(ids)-failed)/insertDur.Seconds(), failed, st.NodeCount())

	queryExtent := flagBenchExtent / 100
	start = time.Now()
	found := 0
	for q := 0; q < flagBenchQueries; q++ {
		origin := geometry.NewPoint3D(
			rng.Float64()*flagBenchExtent,
			rng.Float64()*flagBenchExtent,
			rng.Float64()*flagBenchExtent)
		found += len(st.EntitiesInRegion(geometry.NewCube(origin, queryExtent)))
	}
	regionDur := time.Since(start)
	cmd.Printf("region: %d queries in %v (%.0f/s, %d hits)\n",
		flagBenchQueries, regionDur, float64(flagBenchQueries)/regionDur.Seconds(), found)

	start = time.Now()
	var neighbors []index.Neighbor
	for q := 0; q < flagBenchQueries; q++ {
		p := geometry.NewPoint3D(
			rng.Float64()*flagBenchExtent,
			rng.Float64()*flagBenchExtent,
			rng.Float64()*flagBenchExtent)
		neighbors, err = st.KNearestNeighbors(p, 10, queryExtent)
		if err != nil {
			return err
		}
	}
	knnDur := time.Since(start)
	cmd.Printf("knn: %d queries in %v (%.0f/s, last %d neighbors)\n",
		flagBenchQueries, knnDur, float64(flagBenchQueries)/knnDur.Seconds(), len(neighbors))
	return nil
}
