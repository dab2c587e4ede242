// Package store owns the expense and category collections and writes them
// back to a key-value port after every change.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"expensebook/internal/core"
	"expensebook/internal/log"
	"expensebook/internal/storage"
)

// Store is safe for concurrent use. Every read-modify-persist sequence runs
// under one lock.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	logger *log.Logger
	newID  func() string
	strict bool

	expenses   []core.Expense
	categories []core.Category
	dirty      map[string]bool
}

type Option func(*Store)

// WithStrictCategories makes AddExpense and EditExpense reject category ids
// that are not in the category collection.
func WithStrictCategories(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger.WithComponent(log.ComponentStore)
		}
	}
}

// WithIDGenerator replaces core.NewID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Open loads both collections from kv. A missing categories record is seeded
// with DefaultCategories and written back; a missing expenses record is empty.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("store: nil key-value backend")
	}
	s := &Store{
		kv:     kv,
		logger: log.Default().WithComponent(log.ComponentStore),
		newID:  core.NewID,
		dirty:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	categories, seeded, err := load[core.Category](ctx, s, keyCategories)
	if err != nil {
		return nil, err
	}
	if !seeded {
		categories = DefaultCategories()
		s.dirty[keyCategories] = true
		s.logger.InfoContext(ctx, "Seeding default categories", log.FieldCount, len(categories))
	}
	s.categories = categories

	expenses, _, err := load[core.Expense](ctx, s, keyExpenses)
	if err != nil {
		return nil, err
	}
	s.expenses = expenses

	if s.dirty[keyCategories] {
		if err := s.write(ctx, keyCategories); err != nil {
			return nil, fmt.Errorf("seed default categories: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "Store loaded",
		log.FieldOperation, log.OpLoad,
		"expenses", len(s.expenses),
		"categories", len(s.categories))
	return s, nil
}

// load returns the decoded collection and whether the key existed. Records
// in the unversioned layout are marked dirty so the next write upgrades them.
func load[T any](ctx context.Context, s *Store, key string) ([]T, bool, error) {
	data, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	items, version, err := decodeItems[T](data)
	if err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", key, err)
	}
	if version < envelopeVersion {
		s.logger.InfoContext(ctx, "Upgrading unversioned record on next write", log.FieldKey, key)
		s.dirty[key] = true
	}
	return items, true, nil
}

// Expenses returns a copy of the expenses in insertion order.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses)
}

// Categories returns a copy of the categories in insertion order.
func (s *Store) Categories() []core.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories)
}

// Snapshot returns both collections as of one instant.
func (s *Store) Snapshot() ([]core.Expense, []core.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses), slices.Clone(s.categories)
}

func (s *Store) Expense(id string) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.expenseIndex(id); i >= 0 {
		return s.expenses[i], true
	}
	return core.Expense{}, false
}

func (s *Store) Category(id string) (core.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.categoryIndex(id); i >= 0 {
		return s.categories[i], true
	}
	return core.Category{}, false
}

// AddExpense appends a new expense with a fresh id. Fields are stored as
// given; validation belongs to the caller.
func (s *Store) AddExpense(ctx context.Context, draft core.ExpenseDraft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCategory(draft.Category); err != nil {
		return core.Expense{}, err
	}

	expense := draft.WithID(s.uniqueID(func(id string) bool { return s.expenseIndex(id) >= 0 }))
	s.expenses = append(s.expenses, expense)

	s.logger.DebugContext(ctx, "Expense added",
		log.NewFields().WithExpense(expense.ID, expense.Description, expense.Amount.Cents, expense.Category).WithOperation(log.OpCreate).ToSlice()...)
	return expense, s.persist(ctx, keyExpenses)
}

// EditExpense replaces every field of the expense with the given id. An
// unknown id changes nothing and is not an error.
func (s *Store) EditExpense(ctx context.Context, id string, draft core.ExpenseDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.expenseIndex(id)
	if i < 0 {
		s.logger.DebugContext(ctx, "Edit of unknown expense ignored", log.FieldExpenseID, id)
		return nil
	}
	if err := s.checkCategory(draft.Category); err != nil {
		return err
	}

	s.expenses[i] = draft.WithID(id)
	s.logger.DebugContext(ctx, "Expense updated", log.FieldExpenseID, id, log.FieldOperation, log.OpUpdate)
	return s.persist(ctx, keyExpenses)
}

// DeleteExpense removes the expense with the given id. An unknown id changes
// nothing and is not an error.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.expenseIndex(id)
	if i < 0 {
		s.logger.DebugContext(ctx, "Delete of unknown expense ignored", log.FieldExpenseID, id)
		return nil
	}

	s.expenses = slices.Delete(s.expenses, i, i+1)
	s.logger.DebugContext(ctx, "Expense deleted", log.FieldExpenseID, id, log.FieldOperation, log.OpDelete)
	return s.persist(ctx, keyExpenses)
}

// AddCategory appends a new category with a fresh id.
func (s *Store) AddCategory(ctx context.Context, draft core.CategoryDraft) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := draft.WithID(s.uniqueID(func(id string) bool { return s.categoryIndex(id) >= 0 }))
	s.categories = append(s.categories, category)

	s.logger.DebugContext(ctx, "Category added",
		log.NewFields().WithCategory(category.ID, category.Name).WithOperation(log.OpCreate).ToSlice()...)
	return category, s.persist(ctx, keyCategories)
}

// DeleteCategory removes the category unless an expense still references it,
// in which case a *CategoryInUseError is returned and nothing changes.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inUse int
	for _, e := range s.expenses {
		if e.Category == id {
			inUse++
		}
	}
	if inUse > 0 {
		return &CategoryInUseError{CategoryID: id, Expenses: inUse}
	}

	i := s.categoryIndex(id)
	if i < 0 {
		s.logger.DebugContext(ctx, "Delete of unknown category ignored", log.FieldCategoryID, id)
		return nil
	}

	s.categories = slices.Delete(s.categories, i, i+1)
	s.logger.DebugContext(ctx, "Category deleted", log.FieldCategoryID, id, log.FieldOperation, log.OpDelete)
	return s.persist(ctx, keyCategories)
}

// Flush retries every write that has failed so far.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx)
}

// Pending reports whether any collection has unsaved changes.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) > 0
}

// Ping checks the backing store.
func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

// persist marks keys dirty and writes every dirty collection. Must hold s.mu.
func (s *Store) persist(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.dirty[key] = true
	}

	var errs []error
	for _, key := range []string{keyCategories, keyExpenses} {
		if !s.dirty[key] {
			continue
		}
		if err := s.write(ctx, key); err != nil {
			s.logger.ErrorTypeContext(ctx, "Failed to persist collection", log.ErrorTypeDatabase, err,
				log.FieldKey, key, log.FieldOperation, log.OpPersist)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) write(ctx context.Context, key string) error {
	var (
		data []byte
		err  error
	)
	switch key {
	case keyCategories:
		data, err = encodeItems(s.categories)
	case keyExpenses:
		data, err = encodeItems(s.expenses)
	default:
		return fmt.Errorf("unknown collection %q", key)
	}
	if err != nil {
		return &PersistError{Key: key, Err: err}
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		return &PersistError{Key: key, Err: err}
	}
	delete(s.dirty, key)
	return nil
}

func (s *Store) checkCategory(id string) error {
	if s.strict && s.categoryIndex(id) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, id)
	}
	return nil
}

func (s *Store) uniqueID(taken func(string) bool) string {
	for {
		id := s.newID()
		if id != "" && !taken(id) {
			return id
		}
	}
}

func (s *Store) expenseIndex(id string) int {
	return slices.IndexFunc(s.expenses, func(e core.Expense) bool { return e.ID == id })
}

func (s *Store) categoryIndex(id string) int {
	return slices.IndexFunc(s.categories, func(c core.Category) bool { return c.ID == id })
}
