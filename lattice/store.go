package lattice

import (
	"errors"
	"sort"
)

var (
	ErrOutOfBounds     = errors.New("lattice: position out of bounds")
	ErrQuotaExceeded   = errors.New("lattice: category quota exceeded")
	ErrUnknownCategory = errors.New("lattice: unknown category")
)

// Record is the occupancy record of one cell.
type Record struct {
	Pos      Pos
	Category int
	Kind     string
	Color    string
}

// Diff maps every category touched by an operation to its new count.
type Diff map[int]int

// Merge folds o into d; later counts win.
func (d Diff) Merge(o Diff) {
	for c, n := range o {
		d[c] = n
	}
}

// Result describes a successful Place.
type Result struct {
	Record   Record
	Replaced *Record
	Diff     Diff
}

// Store is the sparse occupancy map of the lattice. Records live in a
// contiguous arena; index maps a packed cell key to its arena slot.
// A Store is not safe for concurrent use.
type Store struct {
	bounds  Bounds
	table   Table
	counts  []int
	records []Record
	index   map[uint64]int32
}

func NewStore(b Bounds, t Table) *Store {
	table := make(Table, len(t))
	copy(table, t)
	return &Store{
		bounds: b,
		table:  table,
		counts: make([]int, len(t)),
		index:  make(map[uint64]int32),
	}
}

func (s *Store) Bounds() Bounds { return s.bounds }
func (s *Store) Table() Table   { return s.table }
func (s *Store) Len() int       { return len(s.records) }

func (s *Store) IsValid(p Pos) bool { return s.bounds.IsValid(p) }

// Count returns the live voxel count of category c.
func (s *Store) Count(c int) int {
	if !s.table.Has(c) {
		return 0
	}
	return s.counts[c]
}

// Remaining returns how many more voxels of category c may be placed.
func (s *Store) Remaining(c int) int {
	if !s.table.Has(c) {
		return 0
	}
	if r := s.table[c].MaxCount - s.counts[c]; r > 0 {
		return r
	}
	return 0
}

// Exhausted reports whether category c is at (or over) its quota.
func (s *Store) Exhausted(c int) bool {
	return !s.table.Has(c) || s.counts[c] >= s.table[c].MaxCount
}

// Counts returns a copy of the per-category counters.
func (s *Store) Counts() []int {
	out := make([]int, len(s.counts))
	copy(out, s.counts)
	return out
}

func (s *Store) Get(p Pos) (Record, bool) {
	if !s.bounds.IsValid(p) {
		return Record{}, false
	}
	i, ok := s.index[PackKey(p)]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

func (s *Store) Occupied(p Pos) bool {
	if !s.bounds.IsValid(p) {
		return false
	}
	_, ok := s.index[PackKey(p)]
	return ok
}

// Place puts a voxel of category c at p, replacing any occupant. The quota
// is checked before the occupant is evicted, so an exhausted category never
// displaces an existing voxel.
func (s *Store) Place(p Pos, c int, color string) (Result, error) {
	if !s.bounds.IsValid(p) {
		return Result{}, ErrOutOfBounds
	}
	if !s.table.Has(c) {
		return Result{}, ErrUnknownCategory
	}
	if s.counts[c] >= s.table[c].MaxCount {
		return Result{}, ErrQuotaExceeded
	}
	if color == "" {
		color = DefaultColor
	}

	res := Result{Diff: Diff{}}
	key := PackKey(p)
	if old, ok := s.removeKey(key); ok {
		res.Replaced = &old
		res.Diff[old.Category] = s.counts[old.Category]
	}
	rec := Record{Pos: p, Category: c, Kind: s.table[c].Kind, Color: color}
	s.index[key] = int32(len(s.records))
	s.records = append(s.records, rec)
	s.counts[c]++
	res.Record = rec
	res.Diff[c] = s.counts[c]
	return res, nil
}

// Remove deletes the voxel at p. It reports false when the cell is empty.
func (s *Store) Remove(p Pos) (Record, Diff, bool) {
	if !s.bounds.IsValid(p) {
		return Record{}, nil, false
	}
	old, ok := s.removeKey(PackKey(p))
	if !ok {
		return Record{}, nil, false
	}
	return old, Diff{old.Category: s.counts[old.Category]}, true
}

func (s *Store) removeKey(key uint64) (Record, bool) {
	i, ok := s.index[key]
	if !ok {
		return Record{}, false
	}
	old := s.records[i]
	last := int32(len(s.records) - 1)
	if i != last {
		moved := s.records[last]
		s.records[i] = moved
		s.index[PackKey(moved.Pos)] = i
	}
	s.records = s.records[:last]
	delete(s.index, key)
	s.counts[old.Category]--
	return old, true
}

// Clear empties the store and zeroes every counter.
func (s *Store) Clear() Diff {
	d := Diff{}
	for c := range s.counts {
		if s.counts[c] != 0 {
			d[c] = 0
		}
		s.counts[c] = 0
	}
	s.records = s.records[:0]
	s.index = make(map[uint64]int32)
	return d
}

// Records returns a copy of all records ordered by cell key.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool { return PackKey(out[i].Pos) < PackKey(out[j].Pos) })
	return out
}
