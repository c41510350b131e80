// Package openset provides the priority structures used by the A* search:
// an open set ordered by estimated total cost and a closed set of finalized
// records used for path reconstruction.
//
// Both sets are generic over the coordinate type and know nothing about grids.
package openset

import "container/heap"

// Record is the per-coordinate bookkeeping kept during one search.
type Record[C comparable] struct {
	Coord  C
	Travel int // accumulated cost from the source
	Total  int // Travel + heuristic, the ordering key
	Prev   C   // coordinate this record was reached from
}

// Outcome reports what Insert did with a record.
type Outcome int

const (
	Added Outcome = iota
	Replaced
	Kept
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Replaced:
		return "replaced"
	case Kept:
		return "kept"
	default:
		return "unknown"
	}
}

type item[C comparable] struct {
	record       Record[C]
	seq          uint64
	indexInQueue int
}

type queue[C comparable] []*item[C]

func (q queue[C]) Len() int { return len(q) }

// Less orders by Total, then by insertion sequence so equal keys stay first-in first-out.
func (q queue[C]) Less(i, j int) bool {
	if q[i].record.Total != q[j].record.Total {
		return q[i].record.Total < q[j].record.Total
	}
	return q[i].seq < q[j].seq
}

func (q queue[C]) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].indexInQueue = i
	q[j].indexInQueue = j
}

func (q *queue[C]) Push(x any) {
	it := x.(*item[C])
	it.indexInQueue = len(*q)
	*q = append(*q, it)
}

func (q *queue[C]) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	it.indexInQueue = -1
	return it
}

// OpenSet holds candidate records awaiting expansion, at most one per coordinate.
type OpenSet[C comparable] struct {
	queue   queue[C]
	byCoord map[C]*item[C]
	nextSeq uint64
}

// New returns an empty open set.
func New[C comparable]() *OpenSet[C] {
	return &OpenSet[C]{
		queue:   make(queue[C], 0),
		byCoord: make(map[C]*item[C]),
	}
}

// Insert adds r, or replaces the queued record for the same coordinate when
// r is strictly cheaper. A costlier or equal record leaves the set unchanged.
func (s *OpenSet[C]) Insert(r Record[C]) Outcome {
	if existing, ok := s.byCoord[r.Coord]; ok {
		if r.Total >= existing.record.Total {
			return Kept
		}
		// A replacement queues behind records that already share its key.
		existing.record = r
		existing.seq = s.sequence()
		heap.Fix(&s.queue, existing.indexInQueue)
		return Replaced
	}

	it := &item[C]{record: r, seq: s.sequence()}
	heap.Push(&s.queue, it)
	s.byCoord[r.Coord] = it
	return Added
}

func (s *OpenSet[C]) sequence() uint64 {
	seq := s.nextSeq
	s.nextSeq++
	return seq
}

// Peek returns the record with the smallest Total.
func (s *OpenSet[C]) Peek() (Record[C], bool) {
	if len(s.queue) == 0 {
		return Record[C]{}, false
	}
	return s.queue[0].record, true
}

// RemoveMin discards the minimum record. The set must not be empty.
func (s *OpenSet[C]) RemoveMin() {
	if len(s.queue) == 0 {
		panic("openset: RemoveMin on empty set")
	}
	it := heap.Pop(&s.queue).(*item[C])
	delete(s.byCoord, it.record.Coord)
}

// Contains reports whether a record for c is queued.
func (s *OpenSet[C]) Contains(c C) bool {
	_, ok := s.byCoord[c]
	return ok
}

// Find returns the queued record for c.
func (s *OpenSet[C]) Find(c C) (Record[C], bool) {
	it, ok := s.byCoord[c]
	if !ok {
		return Record[C]{}, false
	}
	return it.record, true
}

// Len returns the number of queued records.
func (s *OpenSet[C]) Len() int { return len(s.queue) }

// Empty reports whether no record is queued.
func (s *OpenSet[C]) Empty() bool { return len(s.queue) == 0 }

// Clear drops every record.
func (s *OpenSet[C]) Clear() {
	s.queue = s.queue[:0]
	clear(s.byCoord)
	s.nextSeq = 0
}

// ClosedSet holds finalized records keyed by coordinate.
type ClosedSet[C comparable] struct {
	records map[C]Record[C]
}

// NewClosed returns an empty closed set.
func NewClosed[C comparable]() *ClosedSet[C] {
	return &ClosedSet[C]{records: make(map[C]Record[C])}
}

// Insert stores r, replacing an existing record only when r is strictly cheaper.
func (s *ClosedSet[C]) Insert(r Record[C]) Outcome {
	if existing, ok := s.records[r.Coord]; ok {
		if r.Total >= existing.Total {
			return Kept
		}
		s.records[r.Coord] = r
		return Replaced
	}
	s.records[r.Coord] = r
	return Added
}

// Contains reports whether c has been finalized.
func (s *ClosedSet[C]) Contains(c C) bool {
	_, ok := s.records[c]
	return ok
}

// Find returns the finalized record for c.
func (s *ClosedSet[C]) Find(c C) (Record[C], bool) {
	r, ok := s.records[c]
	return r, ok
}

// Len returns the number of finalized records.
func (s *ClosedSet[C]) Len() int { return len(s.records) }

// Clear drops every record.
func (s *ClosedSet[C]) Clear() { clear(s.records) }
