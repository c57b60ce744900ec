package questions

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"educross/internal/content"
)

// UnitSource looks up lesson units
type UnitSource interface {
	Unit(subjectID, unitID string) (*content.Unit, error)
}

// OverrideStore holds admin-authored replacements for generated content.
// Override returns nil, nil when a unit has no override.
type OverrideStore interface {
	Override(ctx context.Context, subjectID, unitID string) (*Set, error)
}

// Bank serves question sets. Generated sets are memoized per unit on
// first access; overrides are merged on every read so admin edits apply
// without invalidation.
type Bank struct {
	source    UnitSource
	generator *Generator
	overrides OverrideStore
	logger    *zap.Logger

	mu   sync.RWMutex
	memo map[UnitRef]Set
}

// NewBank creates a bank. overrides may be nil.
func NewBank(source UnitSource, generator *Generator, overrides OverrideStore, logger *zap.Logger) *Bank {
	if generator == nil {
		generator = NewGenerator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bank{
		source:    source,
		generator: generator,
		overrides: overrides,
		logger:    logger,
		memo:      make(map[UnitRef]Set),
	}
}

// Generated returns the memoized generated set of a unit. An unknown unit
// yields an empty set, which is not memoized.
func (b *Bank) Generated(subjectID, unitID string) Set {
	ref := UnitRef{SubjectID: subjectID, UnitID: unitID}

	b.mu.RLock()
	set, ok := b.memo[ref]
	b.mu.RUnlock()
	if ok {
		return set
	}

	unit, err := b.source.Unit(subjectID, unitID)
	if err != nil || unit == nil {
		return Empty()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.memo[ref]; ok {
		return set
	}
	set = b.generator.Generate(subjectID, unit)
	b.memo[ref] = set
	return set
}

// Questions returns the generated set with any override merged in.
// Override lookup failures are logged and the generated set is served.
func (b *Bank) Questions(ctx context.Context, subjectID, unitID string) Set {
	set := b.Generated(subjectID, unitID)
	if b.overrides == nil {
		return set
	}

	manual, err := b.overrides.Override(ctx, subjectID, unitID)
	if err != nil {
		b.logger.Warn("failed to load question override",
			zap.String("subject_id", subjectID),
			zap.String("unit_id", unitID),
			zap.Error(err))
		return set
	}
	if manual == nil {
		return set
	}
	return set.Merge(*manual)
}

// Invalidate drops the memoized set of one unit
func (b *Bank) Invalidate(subjectID, unitID string) {
	b.mu.Lock()
	delete(b.memo, UnitRef{SubjectID: subjectID, UnitID: unitID})
	b.mu.Unlock()
}

// Len returns the number of memoized units
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.memo)
}
