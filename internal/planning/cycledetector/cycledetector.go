// Package cycledetector performs three-color DFS cycle detection over a
// dependency map, grounded on the NodeState enum pattern in the teacher's
// workflow resolver and the traversal in cycle_detector.py.
package cycledetector

import (
	"sort"

	"github.com/kingrea/waveplan/internal/domain"
)

type nodeState int

const (
	unvisited nodeState = iota
	visiting
	visited
)

// Detector walks a dependency map (id -> predecessor ids) looking for
// cycles. It is stateless between calls.
type Detector struct{}

// New returns a ready-to-use Detector.
func New() *Detector { return &Detector{} }

// allNodes is the union of every map key and every id it references, so
// dangling dependency ids are included as graph nodes too. The result is
// sorted so the DFS always starts from the same node regardless of Go's
// randomized map iteration order, keeping a reported cycle's Path stable
// across runs on identical input.
func allNodes(deps map[string][]string) []string {
	seen := make(map[string]struct{})
	var order []string
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			order = append(order, id)
		}
	}
	for id, preds := range deps {
		add(id)
		for _, p := range preds {
			add(p)
		}
	}
	sort.Strings(order)
	return order
}

// HasCycle reports whether deps contains a cycle.
func (d *Detector) HasCycle(deps map[string][]string) bool {
	_, err := d.FindCyclePath(deps)
	return err != nil
}

// FindCyclePath runs the DFS and returns a CyclicDependencyError with the
// discovered path when a cycle exists, nil error otherwise.
func (d *Detector) FindCyclePath(deps map[string][]string) ([]string, error) {
	states := make(map[string]nodeState)
	var path []string

	var visit func(id string) *domain.CyclicDependencyError
	visit = func(id string) *domain.CyclicDependencyError {
		switch states[id] {
		case visited:
			return nil
		case visiting:
			start := indexOf(path, id)
			cycle := append(append([]string{}, path[start:]...), id)
			return &domain.CyclicDependencyError{Path: cycle}
		}
		states[id] = visiting
		path = append(path, id)
		for _, pred := range deps[id] {
			if cerr := visit(pred); cerr != nil {
				return cerr
			}
		}
		path = path[:len(path)-1]
		states[id] = visited
		return nil
	}

	for _, id := range allNodes(deps) {
		if states[id] == unvisited {
			if cerr := visit(id); cerr != nil {
				return nil, cerr
			}
		}
	}
	return nil, nil
}

func indexOf(path []string, id string) int {
	for i, v := range path {
		if v == id {
			return i
		}
	}
	return 0
}
