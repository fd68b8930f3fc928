package ordering

import "github.com/matzehuels/taskgraph/pkg/dag"

// Orderer determines the sequence of tasks in each rank.
type Orderer interface {
	OrderRanks(g *dag.DAG) map[int][]string
}

// DefaultPasses is the number of sweeps used when Barycentric.Passes is zero.
const DefaultPasses = 4

// Hints maps a task ID to a preferred relative position within its rank,
// usually taken from the previous layout. Only the relative order of the
// values matters.
type Hints map[string]float64
