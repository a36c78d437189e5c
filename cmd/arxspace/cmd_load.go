package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arx-os/arxspace/internal/common/logger"
	"github.com/arx-os/arxspace/pkg/geometry"
)

var (
	flagQueryBox string
	flagKNN      string
)

var loadCmd = &cobra.Command{
	Use:   "load <file.csv>",
	Short: "Bulk-load entities from a CSV file and run queries",
	Long: `Load reads one entity per line (x,y,z[,label]), bulk-inserts them at the
configured level and optionally runs queries against the result:

  arxspace load points.csv --query-box 0,0,0,100,100,100
  arxspace load points.csv --knn 50,50,50,10`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&flagQueryBox, "query-box", "", "region query: minX,minY,minZ,maxX,maxY,maxZ")
	loadCmd.Flags().StringVar(&flagKNN, "knn", "", "k-NN query: x,y,z,k")
}

func runLoad(cmd *cobra.Command, args []string) error {
	st, err := newStore(flagEngine, appConfig)
	if err != nil {
		return err
	}

	positions, labels, err := readPointsCSV(args[0])
	if err != nil {
		return err
	}
	logger.Info("loading %d entities into %s at level %d", len(positions), st.Engine(), flagLevel)

	ids, errs := st.InsertBatch(positions, labels, uint8(flagLevel))
	failed := 0
	for i, e := range errs {
		if e != nil {
			failed++
			logger.Warn("line %d: %v", i+1, e)
		}
	}

	cmd.Printf("inserted %d entities (%d failed), %d nodes\n",
		len(ids)-failed, failed, st.NodeCount())

	if flagQueryBox != "" {
		vals, err := parseFloats(flagQueryBox, 6)
		if err != nil {
			return fmt.Errorf("invalid --query-box: %w", err)
		}
		region := geometry.NewAABB(
			geometry.NewPoint3D(vals[0], vals[1], vals[2]),
			geometry.NewPoint3D(vals[3], vals[4], vals[5]))
		found := st.EntitiesInRegion(region)
		cmd.Printf("region %v: %d entities\n", region, len(found))
	}

	if flagKNN != "" {
		vals, err := parseFloats(flagKNN, 4)
		if err != nil {
			return fmt.Errorf("invalid --knn: %w", err)
		}
		neighbors, err := st.KNearestNeighbors(
			geometry.NewPoint3D(vals[0], vals[1], vals[2]), int(vals[3]), 0)
		if err != nil {
			return err
		}
		for i, n := range neighbors {
			cmd.Printf("#%d entity %d at distance %.3f\n", i+1, n.ID, n.Distance)
		}
	}
	return nil
}

// readPointsCSV parses x,y,z[,label] lines
func readPointsCSV(path string) ([]geometry.Point3D, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var positions []geometry.Point3D
	var labels []string
	line := 0
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		line++
		if len(rec) < 3 {
			return nil, nil, fmt.Errorf("line %d: want at least x,y,z", line)
		}
		var coords [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
			coords[i] = v
		}
		positions = append(positions, geometry.NewPoint3D(coords[0], coords[1], coords[2]))
		if len(rec) > 3 {
			labels = append(labels, strings.TrimSpace(rec[3]))
		} else {
			labels = append(labels, fmt.Sprintf("entity-%d", line))
		}
	}
	return positions, labels, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
