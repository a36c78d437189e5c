package main

import (
	"fmt"

	"github.com/arx-os/arxspace/internal/config"
	"github.com/arx-os/arxspace/internal/index"
	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// store narrows the generic index to what the CLI needs, so commands can
// switch engines at runtime
type store interface {
	Engine() string
	InsertBatch(positions []geometry.Point3D, contents []string, level uint8) ([]index.EntityID, []error)
	EntityCount() int
	NodeCount() int
	EntitiesInRegion(region geometry.AABB) []index.EntityID
	KNearestNeighbors(p geometry.Point3D, k int, maxDistance float64) ([]index.Neighbor, error)
	RayIntersectAll(ray geometry.Ray3D) []index.RayHit
	NodeDump() []nodeDump
}

// nodeDump is one node in the debug export, reconstructed purely from the
// public node stream and bounds lookup
type nodeDump struct {
	Key      string        `json:"key"`
	Level    uint8         `json:"level"`
	Entities int           `json:"entities"`
	Bounds   geometry.AABB `json:"bounds"`
}

type octreeStore struct {
	*index.SpatialIndex[sfc.MortonKey, string]
}

func (s octreeStore) NodeDump() []nodeDump {
	return dumpNodes(s.SpatialIndex)
}

type tetreeStore struct {
	*index.SpatialIndex[sfc.TetKey, string]
}

func (s tetreeStore) NodeDump() []nodeDump {
	return dumpNodes(s.SpatialIndex)
}

func dumpNodes[K sfc.Key[K]](idx *index.SpatialIndex[K, string]) []nodeDump {
	var out []nodeDump
	idx.NodesFunc(func(info index.NodeInfo[K]) bool {
		bounds, err := idx.GetNodeBounds(info.Key)
		if err != nil {
			return true
		}
		out = append(out, nodeDump{
			Key:      fmt.Sprint(info.Key),
			Level:    info.Key.Level(),
			Entities: len(info.EntityIDs),
			Bounds:   bounds,
		})
		return true
	})
	return out
}

// newStore builds the requested engine
func newStore(engine string, cfg *config.Config) (store, error) {
	switch engine {
	case "octree":
		idx, err := index.NewOctree[string](cfg)
		if err != nil {
			return nil, err
		}
		return octreeStore{idx}, nil
	case "tetree":
		idx, err := index.NewTetree[string](cfg)
		if err != nil {
			return nil, err
		}
		return tetreeStore{idx}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want octree or tetree)", engine)
	}
}
