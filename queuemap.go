package deltacycle

import (
	"container/heap"
	"container/list"
	"sort"
)

// Indexable is satisfied by any value that exposes a key of type K, the
// capability QueueMap requires of everything it stores.
type Indexable[K any] interface {
	Key() K
}

// queueElem is the full constraint QueueMap places on its element type: a
// key of type K, plus comparability so Remove can recognise "this exact
// element" inside a bucket.
type queueElem[K any] interface {
	comparable
	Indexable[K]
}

// QueueMap is an ordered mapping from K to a non-empty FIFO queue of T.
// Buckets are ordered by K's natural order via the comparator supplied at
// construction; no empty bucket is ever observable.
//
// The heap side is grounded on sim.EventQueueImpl's container/heap-backed
// eventHeap (same Len/Less/Swap/Push/Pop shape, parametrized over keys
// instead of event times); the FIFO side is grounded on
// sim.InsertionQueue's use of container/list. Unlike eventHeap, the heap
// here holds each distinct key once — duplicate-time entries live in the
// bucket's list, not as duplicate heap entries — which is what makes
// QueueMap cheaper than a plain event heap for timer-heavy workloads.
type QueueMap[K comparable, T queueElem[K]] struct {
	cmp     func(a, b K) int
	keys    *keyHeap[K]
	buckets map[K]*list.List
	count   int
}

// NewQueueMap creates an empty QueueMap ordered by cmp.
func NewQueueMap[K comparable, T queueElem[K]](cmp func(a, b K) int) *QueueMap[K, T] {
	kh := &keyHeap[K]{cmp: cmp}
	heap.Init(kh)

	return &QueueMap[K, T]{
		cmp:     cmp,
		keys:    kh,
		buckets: make(map[K]*list.List),
	}
}

// Len returns the total number of elements across all buckets.
func (q *QueueMap[K, T]) Len() int { return q.count }

// IsEmpty reports whether the map holds no elements.
func (q *QueueMap[K, T]) IsEmpty() bool { return q.count == 0 }

// IsNotEmpty reports whether the map holds at least one element.
func (q *QueueMap[K, T]) IsNotEmpty() bool { return q.count != 0 }

// Add inserts t into the bucket for t.Key(), creating the bucket if it
// doesn't exist yet.
func (q *QueueMap[K, T]) Add(t T) {
	k := t.Key()

	bucket, ok := q.buckets[k]
	if !ok {
		bucket = list.New()
		q.buckets[k] = bucket
		heap.Push(q.keys, k)
	}

	bucket.PushBack(t)
	q.count++
}

// AddQueueMap appends every element of other, in other's iteration order,
// into this map. For keys that exist in both maps, this map's existing
// bucket contents come first, followed by other's.
func (q *QueueMap[K, T]) AddQueueMap(other *QueueMap[K, T]) {
	it := other.Iterator()
	for it.Next() {
		q.Add(it.Value())
	}
}

// FirstKey returns the smallest key, failing with ErrEmpty if the map holds
// no buckets.
func (q *QueueMap[K, T]) FirstKey() (K, error) {
	if q.IsEmpty() {
		var zero K
		return zero, ErrEmpty
	}

	return q.keys.data[0], nil
}

// FirstQueue returns the bucket for the smallest key, failing with ErrEmpty
// if the map holds no buckets.
func (q *QueueMap[K, T]) FirstQueue() (*list.List, error) {
	k, err := q.FirstKey()
	if err != nil {
		return nil, err
	}

	return q.buckets[k], nil
}

// First returns the head element of the smallest-key bucket, failing with
// ErrEmpty if the map holds no buckets.
func (q *QueueMap[K, T]) First() (T, error) {
	bucket, err := q.FirstQueue()
	if err != nil {
		var zero T
		return zero, err
	}

	return bucket.Front().Value.(T), nil
}

// RemoveFirst removes and returns the head of the smallest-key bucket,
// dropping the bucket if it becomes empty.
func (q *QueueMap[K, T]) RemoveFirst() (T, error) {
	k, err := q.FirstKey()
	if err != nil {
		var zero T
		return zero, err
	}

	bucket := q.buckets[k]
	v := bucket.Remove(bucket.Front()).(T)
	q.count--

	if bucket.Len() == 0 {
		delete(q.buckets, k)
		heap.Pop(q.keys)
	}

	return v, nil
}

// RemoveFirstQueue detaches and returns the entire smallest-key bucket; the
// key is removed from the map.
func (q *QueueMap[K, T]) RemoveFirstQueue() (*list.List, error) {
	k, err := q.FirstKey()
	if err != nil {
		return nil, err
	}

	bucket := q.buckets[k]
	delete(q.buckets, k)
	heap.Pop(q.keys)
	q.count -= bucket.Len()

	return bucket, nil
}

// RemoveWhere scans every bucket and drops elements matching pred, dropping
// any bucket that becomes empty as a result.
func (q *QueueMap[K, T]) RemoveWhere(pred func(T) bool) {
	for k, bucket := range q.buckets {
		for e := bucket.Front(); e != nil; {
			next := e.Next()

			if pred(e.Value.(T)) {
				bucket.Remove(e)
				q.count--
			}

			e = next
		}

		if bucket.Len() == 0 {
			delete(q.buckets, k)
			q.removeKeyFromHeap(k)
		}
	}
}

// Remove drops the first occurrence of t (by equality) from the bucket that
// contains it, reporting whether anything was removed.
func (q *QueueMap[K, T]) Remove(t T) bool {
	k := t.Key()

	bucket, ok := q.buckets[k]
	if !ok {
		return false
	}

	for e := bucket.Front(); e != nil; e = e.Next() {
		if e.Value.(T) == t {
			bucket.Remove(e)
			q.count--

			if bucket.Len() == 0 {
				delete(q.buckets, k)
				q.removeKeyFromHeap(k)
			}

			return true
		}
	}

	return false
}

func (q *QueueMap[K, T]) removeKeyFromHeap(k K) {
	for i, candidate := range q.keys.data {
		if candidate == k {
			heap.Remove(q.keys, i)
			return
		}
	}
}

// Iterator returns a cursor that visits every element in ascending-key,
// FIFO-within-key order. It snapshots only the (typically far smaller) set
// of distinct keys up front, then walks each bucket's list lazily — it
// never allocates a flat copy of all N_total elements.
func (q *QueueMap[K, T]) Iterator() *QueueMapIterator[K, T] {
	keys := make([]K, len(q.keys.data))
	copy(keys, q.keys.data)

	cmp := q.cmp
	sort.Slice(keys, func(i, j int) bool { return cmp(keys[i], keys[j]) < 0 })

	return &QueueMapIterator[K, T]{
		keys:    keys,
		idx:     -1,
		buckets: q.buckets,
	}
}

// QueueMapIterator is a pull-style cursor over a QueueMap snapshot.
type QueueMapIterator[K comparable, T queueElem[K]] struct {
	keys    []K
	idx     int
	cur     *list.Element
	buckets map[K]*list.List
}

// Next advances the cursor, returning false once no element remains.
func (it *QueueMapIterator[K, T]) Next() bool {
	for {
		if it.cur != nil {
			it.cur = it.cur.Next()
			if it.cur != nil {
				return true
			}
		}

		it.idx++
		if it.idx >= len(it.keys) {
			return false
		}

		bucket := it.buckets[it.keys[it.idx]]
		it.cur = bucket.Front()

		if it.cur != nil {
			return true
		}
	}
}

// Value returns the element the cursor currently points at.
func (it *QueueMapIterator[K, T]) Value() T {
	return it.cur.Value.(T)
}

// keyHeap is a container/heap.Interface over a comparator-ordered slice of
// keys, directly mirroring sim.eventHeap's shape.
type keyHeap[K comparable] struct {
	data []K
	cmp  func(a, b K) int
}

func (h keyHeap[K]) Len() int { return len(h.data) }

func (h keyHeap[K]) Less(i, j int) bool { return h.cmp(h.data[i], h.data[j]) < 0 }

func (h keyHeap[K]) Swap(i, j int) { h.data[i], h.data[j] = h.data[j], h.data[i] }

func (h *keyHeap[K]) Push(x interface{}) {
	h.data = append(h.data, x.(K))
}

func (h *keyHeap[K]) Pop() interface{} {
	old := h.data
	n := len(old)
	k := old[n-1]
	h.data = old[:n-1]

	return k
}
