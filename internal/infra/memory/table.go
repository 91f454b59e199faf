package memory

// table keeps entities of one type in insertion order with keyed lookup.
// Callers hold the owning Store's lock.
type table[K comparable, T any] struct {
	order []K
	rows  map[K]T
}

func newTable[K comparable, T any]() *table[K, T] {
	return &table[K, T]{rows: make(map[K]T)}
}

func (t *table[K, T]) get(key K) (T, bool) {
	row, ok := t.rows[key]
	return row, ok
}

func (t *table[K, T]) has(key K) bool {
	_, ok := t.rows[key]
	return ok
}

// put inserts or replaces; new keys are appended to the insertion order.
func (t *table[K, T]) put(key K, row T) {
	if _, ok := t.rows[key]; !ok {
		t.order = append(t.order, key)
	}
	t.rows[key] = row
}

// filter returns rows matching keep, in insertion order.
func (t *table[K, T]) filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, key := range t.order {
		if row := t.rows[key]; keep(row) {
			out = append(out, row)
		}
	}
	return out
}
