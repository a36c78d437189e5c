package index

import (
	"github.com/google/btree"

	"github.com/arx-os/arxspace/internal/sfc"
)

// nodeEntry pairs a key with its node inside the ordered map
type nodeEntry[K sfc.Key[K]] struct {
	key  K
	node *node
}

// nodeMap is the ordered Key -> node map. It is a B-tree ordered by the key
// contract (level first, then curve index), which keeps each level's nodes
// contiguous and makes per-level curve-interval scans cheap. A hash map would
// lose the sub-map scans the queries depend on.
type nodeMap[K sfc.Key[K]] struct {
	tree        *btree.BTreeG[nodeEntry[K]]
	levelCounts [sfc.MaxLevel + 1]int
}

const nodeMapDegree = 32

func newNodeMap[K sfc.Key[K]]() *nodeMap[K] {
	return &nodeMap[K]{
		tree: btree.NewG(nodeMapDegree, func(a, b nodeEntry[K]) bool {
			return a.key.Compare(b.key) < 0
		}),
	}
}

// get returns the node stored at key, or nil
func (m *nodeMap[K]) get(key K) *node {
	e, ok := m.tree.Get(nodeEntry[K]{key: key})
	if !ok {
		return nil
	}
	return e.node
}

// put stores a node at key; the key must not be present
func (m *nodeMap[K]) put(key K, n *node) {
	m.tree.ReplaceOrInsert(nodeEntry[K]{key: key, node: n})
	m.levelCounts[key.Level()]++
}

// delete removes the node at key, returning it
func (m *nodeMap[K]) delete(key K) *node {
	e, ok := m.tree.Delete(nodeEntry[K]{key: key})
	if !ok {
		return nil
	}
	m.levelCounts[key.Level()]--
	return e.node
}

// len returns the number of nodes
func (m *nodeMap[K]) len() int {
	return m.tree.Len()
}

// ascend walks all nodes in key order until fn returns false
func (m *nodeMap[K]) ascend(fn func(K, *node) bool) {
	m.tree.Ascend(func(e nodeEntry[K]) bool {
		return fn(e.key, e.node)
	})
}

// ascendRange walks nodes with lo <= key <= hi in key order
func (m *nodeMap[K]) ascendRange(lo, hi K, fn func(K, *node) bool) {
	m.tree.AscendGreaterOrEqual(nodeEntry[K]{key: lo}, func(e nodeEntry[K]) bool {
		if e.key.Compare(hi) > 0 {
			return false
		}
		return fn(e.key, e.node)
	})
}

// populatedLevels returns the levels that currently hold nodes, ascending
func (m *nodeMap[K]) populatedLevels() []uint8 {
	var levels []uint8
	for l, c := range m.levelCounts {
		if c > 0 {
			levels = append(levels, uint8(l))
		}
	}
	return levels
}

// levelCount returns the number of nodes at one level
func (m *nodeMap[K]) levelCount(level uint8) int {
	return m.levelCounts[level]
}
