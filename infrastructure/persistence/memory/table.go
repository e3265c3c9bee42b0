/*
Package memory in-process repositories and unit of work, used for
database.type=memory and as test doubles.

Aggregates are stored as snapshots (their ReconstructionDTO), never as the
live pointer a caller holds, so a caller mutating an aggregate it has not
saved cannot change what the repository returns to anyone else. Update
applies the same version check as the SQL repositories.
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"ddd-commerce/domain/shared"
)

// versioned aggregates whose version the repository advances on save
type versioned interface {
	shared.AggregateRoot
	IncrementVersionForSave()
}

type row[D any] struct {
	dto D
	seq uint64
}

// table generic snapshot store behind every memory repository
type table[T versioned, D any] struct {
	mu   sync.RWMutex
	rows map[string]row[D]
	seq  uint64

	entity      string
	snapshot    func(T) D
	rebuild     func(D) T
	versionOf   func(D) int
	notFound    func(id string) error
	conflict    func(id string) error
	newestFirst bool

	// optional secondary unique key (user email)
	uniqueKey func(D) string
	uniqueErr func(key string) error
}

func (t *table[T, D]) create(ctx context.Context, agg T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dto := t.snapshot(agg)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.rows[agg.ID()]; exists {
		return shared.NewDuplicateError(t.entity, "id", t.entity+" already exists: "+agg.ID())
	}
	if err := t.checkUnique(agg.ID(), dto); err != nil {
		return err
	}

	t.seq++
	t.rows[agg.ID()] = row[D]{dto: dto, seq: t.seq}
	t.journal(ctx, agg.ID(), row[D]{}, false)
	return nil
}

func (t *table[T, D]) update(ctx context.Context, agg T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, exists := t.rows[agg.ID()]
	if !exists {
		return t.notFound(agg.ID())
	}
	if t.versionOf(prev.dto) != agg.Version() {
		return t.conflict(agg.ID())
	}
	if err := t.checkUnique(agg.ID(), t.snapshot(agg)); err != nil {
		return err
	}

	agg.IncrementVersionForSave()
	t.rows[agg.ID()] = row[D]{dto: t.snapshot(agg), seq: prev.seq}
	t.journal(ctx, agg.ID(), prev, true)
	return nil
}

func (t *table[T, D]) checkUnique(id string, dto D) error {
	if t.uniqueKey == nil {
		return nil
	}
	key := t.uniqueKey(dto)
	for otherID, r := range t.rows {
		if otherID != id && t.uniqueKey(r.dto) == key {
			return t.uniqueErr(key)
		}
	}
	return nil
}

func (t *table[T, D]) findByID(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	r, exists := t.rows[id]
	if !exists {
		return zero, t.notFound(id)
	}
	return t.rebuild(r.dto), nil
}

func (t *table[T, D]) findAll(ctx context.Context, spec shared.Specification[T], limit int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	rows := make([]row[D], 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, r)
	}
	t.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if t.newestFirst {
			return rows[i].seq > rows[j].seq
		}
		return rows[i].seq < rows[j].seq
	})

	result := make([]T, 0, len(rows))
	for _, r := range rows {
		agg := t.rebuild(r.dto)
		if !shared.Satisfies(ctx, spec, agg) {
			continue
		}
		result = append(result, agg)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (t *table[T, D]) findOne(ctx context.Context, spec shared.Specification[T]) (T, error) {
	var zero T
	found, err := t.findAll(ctx, spec, 1)
	if err != nil {
		return zero, err
	}
	if len(found) == 0 {
		return zero, t.notFound("")
	}
	return found[0], nil
}

func (t *table[T, D]) delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, exists := t.rows[id]
	if !exists {
		return t.notFound(id)
	}
	delete(t.rows, id)
	t.journal(ctx, id, prev, true)
	return nil
}

// journal records how to undo a write when it happens inside a unit of work.
// Called with t.mu held.
func (t *table[T, D]) journal(ctx context.Context, id string, prev row[D], existed bool) {
	j := journalFromContext(ctx)
	if j == nil {
		return
	}
	j.record(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if existed {
			t.rows[id] = prev
		} else {
			delete(t.rows, id)
		}
	})
}

func (t *table[T, D]) count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}
