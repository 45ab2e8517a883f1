// Package sorter implements Kahn's algorithm with a priority-ordered ready
// queue, grounded on backlog_sorter.py and the node-queue shape of the
// teacher's scheduler.Runnable.
package sorter

import (
	"container/heap"
	"sort"

	"github.com/kingrea/waveplan/internal/domain"
	"github.com/kingrea/waveplan/internal/planning/cycledetector"
)

// Sorter topologically orders stories with priority as tie-break.
type Sorter struct {
	cycles *cycledetector.Detector
}

// New returns a ready-to-use Sorter.
func New() *Sorter {
	return &Sorter{cycles: cycledetector.New()}
}

// readyItem is one node waiting in the priority queue, carrying an
// insertion sequence so stories of equal priority come out in the order
// they first became ready.
type readyItem struct {
	id       string
	priority int
	seq      int
}

// readyQueue is a container/heap.Interface min-heap ordered by priority,
// then by insertion sequence.
type readyQueue []readyItem

func (q readyQueue) Len() int { return len(q) }
func (q readyQueue) Less(i, j int) bool {
	if q[i].priority == q[j].priority {
		return q[i].seq < q[j].seq
	}
	return q[i].priority < q[j].priority
}
func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *readyQueue) Push(x any)   { *q = append(*q, x.(readyItem)) }
func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Sort orders stories respecting dependencies and priority. Stories with a
// dangling dependency (referencing an id absent from stories) never reach
// in-degree zero and are silently omitted from the result.
func (s *Sorter) Sort(stories []domain.Story) ([]domain.Story, error) {
	if len(stories) == 0 {
		return nil, nil
	}

	depsMap := make(map[string][]string, len(stories))
	storyMap := make(map[string]domain.Story, len(stories))
	dependents := make(map[string][]string, len(stories))
	for _, story := range stories {
		depsMap[story.ID] = story.Dependencies
		storyMap[story.ID] = story
	}
	for _, story := range stories {
		for _, depID := range story.Dependencies {
			dependents[depID] = append(dependents[depID], story.ID)
		}
	}

	if _, err := s.cycles.FindCyclePath(depsMap); err != nil {
		return nil, err
	}

	inDegree := make(map[string]int, len(stories))
	for _, story := range stories {
		if _, ok := inDegree[story.ID]; !ok {
			inDegree[story.ID] = 0
		}
		for range story.Dependencies {
			inDegree[story.ID]++
		}
	}

	seq := 0
	queue := &readyQueue{}
	var initiallyReady []string
	for _, story := range stories {
		if inDegree[story.ID] == 0 {
			initiallyReady = append(initiallyReady, story.ID)
		}
	}
	sort.Strings(initiallyReady)
	for _, id := range initiallyReady {
		heap.Push(queue, readyItem{id: id, priority: storyMap[id].Priority, seq: seq})
		seq++
	}

	result := make([]domain.Story, 0, len(stories))

	for queue.Len() > 0 {
		current := heap.Pop(queue).(readyItem)
		result = append(result, storyMap[current.id])

		for _, dependentID := range dependents[current.id] {
			inDegree[dependentID]--
			if inDegree[dependentID] != 0 {
				continue
			}
			heap.Push(queue, readyItem{id: dependentID, priority: storyMap[dependentID].Priority, seq: seq})
			seq++
		}
	}

	return result, nil
}
