package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebook/internal/core"
	"expensebook/internal/log"
	"expensebook/internal/storage"
	"expensebook/internal/storage/memory"
)

// flakyKV fails every Put while failPuts is set.
type flakyKV struct {
	*memory.Store
	mu       sync.Mutex
	failPuts bool
	puts     int
}

func (f *flakyKV) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failPuts
	f.puts++
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.Store.Put(ctx, key, value)
}

func (f *flakyKV) setFail(fail bool) {
	f.mu.Lock()
	f.failPuts = fail
	f.mu.Unlock()
}

func (f *flakyKV) putCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts
}

func sequentialIDs(prefix string) func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func openTestStore(t *testing.T, kv storage.KV, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(log.Discard())}, opts...)
	s, err := Open(context.Background(), kv, opts...)
	require.NoError(t, err)
	return s
}

func draft(cents int64, category, desc string, y, m, d int) core.ExpenseDraft {
	return core.ExpenseDraft{
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: desc,
		Date:        core.NewDate(y, m, d),
	}
}

func TestOpenSeedsDefaultCategories(t *testing.T) {
	kv := memory.New()
	s := openTestStore(t, kv)

	assert.Equal(t, DefaultCategories(), s.Categories())
	assert.Empty(t, s.Expenses())
	assert.False(t, s.Pending())

	data, found, err := kv.Get(context.Background(), keyCategories)
	require.NoError(t, err)
	require.True(t, found)

	var env envelope[core.Category]
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, envelopeVersion, env.Version)
	assert.Len(t, env.Items, len(DefaultCategories()))

	_, found, err = kv.Get(context.Background(), keyExpenses)
	require.NoError(t, err)
	assert.False(t, found, "expenses are not written until the first change")
}

func TestStoreLogsUnderItsOwnComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf})

	_, err := Open(context.Background(), memory.New(), WithLogger(logger))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, "component="), line)
		assert.Contains(t, line, "component=store", line)
	}
}

func TestAddExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New(), WithIDGenerator(sequentialIDs("e")))

	in := draft(1250, "food", "Lunch", 2025, 1, 15)
	got, err := s.AddExpense(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, "e-1", got.ID)
	assert.Equal(t, in, got.Draft())

	stored, ok := s.Expense(got.ID)
	require.True(t, ok)
	assert.Equal(t, got, stored)

	all := s.Expenses()
	require.Len(t, all, 1)
	assert.Equal(t, got, all[0])
}

func TestAddExpenseKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New())

	var ids []string
	for i, desc := range []string{"first", "second", "third"} {
		e, err := s.AddExpense(ctx, draft(int64(100*(i+1)), "food", desc, 2025, 1, 3-i))
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	var got []string
	for _, e := range s.Expenses() {
		got = append(got, e.ID)
	}
	assert.Equal(t, ids, got)
}

func TestIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	// The generator repeats itself; the store must skip taken ids.
	seq := []string{"dup", "dup", "", "other"}
	var n int
	gen := func() string {
		id := seq[n%len(seq)]
		n++
		return id
	}
	s := openTestStore(t, memory.New(), WithIDGenerator(gen))

	a, err := s.AddExpense(ctx, draft(100, "food", "a", 2025, 1, 1))
	require.NoError(t, err)
	b, err := s.AddExpense(ctx, draft(200, "food", "b", 2025, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, "dup", a.ID)
	assert.Equal(t, "other", b.ID)
}

func TestEditExpense(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New())

	first, err := s.AddExpense(ctx, draft(1000, "food", "Groceries", 2025, 2, 1))
	require.NoError(t, err)
	second, err := s.AddExpense(ctx, draft(500, "travel", "Bus", 2025, 2, 2))
	require.NoError(t, err)

	changed := draft(1999, "shopping", "Shoes", 2025, 2, 3)
	require.NoError(t, s.EditExpense(ctx, first.ID, changed))

	all := s.Expenses()
	require.Len(t, all, 2)
	assert.Equal(t, changed.WithID(first.ID), all[0], "edit replaces in place")
	assert.Equal(t, second, all[1])
}

func TestEditExpenseMissingIDIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Store: memory.New()}
	s := openTestStore(t, kv)

	e, err := s.AddExpense(ctx, draft(1000, "food", "Groceries", 2025, 2, 1))
	require.NoError(t, err)
	before := s.Expenses()
	puts := kv.putCount()

	require.NoError(t, s.EditExpense(ctx, "missing-id", draft(1, "travel", "x", 2020, 1, 1)))
	assert.Equal(t, before, s.Expenses())
	assert.Equal(t, puts, kv.putCount(), "no write for a no-op")

	require.NoError(t, s.DeleteExpense(ctx, "missing-id"))
	assert.Equal(t, before, s.Expenses())

	_, ok := s.Expense("missing-id")
	assert.False(t, ok)
	_, ok = s.Expense(e.ID)
	assert.True(t, ok)
}

func TestDeleteExpense(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New())

	a, err := s.AddExpense(ctx, draft(100, "food", "a", 2025, 1, 1))
	require.NoError(t, err)
	b, err := s.AddExpense(ctx, draft(200, "food", "b", 2025, 1, 1))
	require.NoError(t, err)
	c, err := s.AddExpense(ctx, draft(300, "food", "c", 2025, 1, 1))
	require.NoError(t, err)

	require.NoError(t, s.DeleteExpense(ctx, b.ID))
	assert.Equal(t, []core.Expense{a, c}, s.Expenses())
}

func TestAddEditDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := openTestStore(t, kv)

	_, err := s.AddExpense(ctx, draft(100, "food", "a", 2025, 1, 1))
	require.NoError(t, err)
	_, err = s.AddExpense(ctx, draft(200, "travel", "b", 2025, 1, 2))
	require.NoError(t, err)
	before := s.Expenses()

	added, err := s.AddExpense(ctx, draft(300, "food", "c", 2025, 1, 3))
	require.NoError(t, err)
	require.NoError(t, s.EditExpense(ctx, added.ID, draft(999, "shopping", "changed", 2025, 2, 1)))
	edited, ok := s.Expense(added.ID)
	require.True(t, ok)
	assert.Equal(t, int64(999), edited.Amount.Cents)
	require.NoError(t, s.DeleteExpense(ctx, added.ID))

	assert.Equal(t, before, s.Expenses())

	reopened := openTestStore(t, kv)
	assert.Equal(t, before, reopened.Expenses(), "persisted state matches too")
}

func TestDeleteCategoryInUse(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New())

	cat, err := s.AddCategory(ctx, core.CategoryDraft{Name: "Pets", Color: "#123456", Icon: core.IconGift})
	require.NoError(t, err)
	e, err := s.AddExpense(ctx, draft(4200, cat.ID, "Vet", 2025, 3, 1))
	require.NoError(t, err)

	expensesBefore, categoriesBefore := s.Snapshot()

	err = s.DeleteCategory(ctx, cat.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCategoryInUse)

	var inUse *CategoryInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, cat.ID, inUse.CategoryID)
	assert.Equal(t, 1, inUse.Expenses)
	assert.Equal(t,
		"Cannot delete category with expenses. Please delete or reassign those expenses first.",
		inUse.UserMessage())

	expensesAfter, categoriesAfter := s.Snapshot()
	assert.Equal(t, expensesBefore, expensesAfter)
	assert.Equal(t, categoriesBefore, categoriesAfter)

	require.NoError(t, s.DeleteExpense(ctx, e.ID))
	require.NoError(t, s.DeleteCategory(ctx, cat.ID))
	_, ok := s.Category(cat.ID)
	assert.False(t, ok)
}

func TestDeleteUnusedCategory(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New())

	require.NoError(t, s.DeleteCategory(ctx, "education"))

	var want []core.Category
	for _, c := range DefaultCategories() {
		if c.ID != "education" {
			want = append(want, c)
		}
	}
	assert.Equal(t, want, s.Categories(), "remaining categories keep their order")

	require.NoError(t, s.DeleteCategory(ctx, "education"), "second delete is a no-op")
}

func TestStrictCategories(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New(), WithStrictCategories(true))

	_, err := s.AddExpense(ctx, draft(100, "nope", "x", 2025, 1, 1))
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Empty(t, s.Expenses())

	e, err := s.AddExpense(ctx, draft(100, "food", "x", 2025, 1, 1))
	require.NoError(t, err)

	err = s.EditExpense(ctx, e.ID, draft(100, "nope", "x", 2025, 1, 1))
	assert.ErrorIs(t, err, ErrUnknownCategory)
	got, _ := s.Expense(e.ID)
	assert.Equal(t, "food", got.Category)
}

func TestLenientCategoriesByDefault(t *testing.T) {
	s := openTestStore(t, memory.New())
	_, err := s.AddExpense(context.Background(), draft(100, "gone", "x", 2025, 1, 1))
	assert.NoError(t, err)
}

func TestReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	s := openTestStore(t, kv)

	cat, err := s.AddCategory(ctx, core.CategoryDraft{Name: "Gym", Icon: core.IconWallet})
	require.NoError(t, err)
	_, err = s.AddExpense(ctx, draft(2599, cat.ID, "Membership", 2025, 4, 1))
	require.NoError(t, err)
	_, err = s.AddExpense(ctx, draft(1050, "food", "Pizza", 2025, 4, 2))
	require.NoError(t, err)

	reopened := openTestStore(t, kv)
	assert.Equal(t, s.Expenses(), reopened.Expenses())
	assert.Equal(t, s.Categories(), reopened.Categories())
}

func TestLegacyArrayIsUpgraded(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.Put(ctx, keyExpenses,
		[]byte(`[{"id":"old-1","amount":12.5,"category":"food","description":"Tacos","date":"2024-12-31"}]`)))
	require.NoError(t, kv.Put(ctx, keyCategories,
		[]byte(`[{"id":"food","name":"Food","color":"#F59E0B","icon":"Utensils"}]`)))

	s := openTestStore(t, kv)
	require.Len(t, s.Expenses(), 1)
	old := s.Expenses()[0]
	assert.Equal(t, int64(1250), old.Amount.Cents)
	assert.Equal(t, "2024-12-31", old.Date.String())
	assert.True(t, s.Pending())

	// Any change rewrites every legacy record in the current layout.
	_, err := s.AddCategory(ctx, core.CategoryDraft{Name: "New"})
	require.NoError(t, err)
	assert.False(t, s.Pending())

	for _, key := range []string{keyCategories, keyExpenses} {
		data, _, err := kv.Get(ctx, key)
		require.NoError(t, err)
		var env struct {
			Version int `json:"version"`
		}
		require.NoError(t, json.Unmarshal(data, &env), key)
		assert.Equal(t, envelopeVersion, env.Version, key)
	}
}

func TestOpenRejectsCorruptRecords(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"garbage expenses", keyExpenses, `not json`},
		{"future version", keyCategories, `{"version":99,"items":[]}`},
		{"bad amount", keyExpenses, `{"version":1,"items":[{"id":"x","amount":"lots"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := memory.New()
			require.NoError(t, kv.Put(context.Background(), tt.key, []byte(tt.value)))
			_, err := Open(context.Background(), kv, WithLogger(log.Discard()))
			assert.Error(t, err)
		})
	}
}

func TestPersistFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Store: memory.New()}
	s, err := Open(ctx, kv, WithLogger(log.Discard()))
	require.NoError(t, err)

	kv.setFail(true)
	e, err := s.AddExpense(ctx, draft(700, "food", "Coffee beans", 2025, 5, 5))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)

	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, keyExpenses, pe.Key)

	_, ok := s.Expense(e.ID)
	assert.True(t, ok, "in-memory change is kept")
	assert.True(t, s.Pending())

	assert.ErrorIs(t, s.Flush(ctx), ErrPersist)

	kv.setFail(false)
	require.NoError(t, s.Flush(ctx))
	assert.False(t, s.Pending())

	reopened, err := Open(ctx, kv.Store, WithLogger(log.Discard()))
	require.NoError(t, err)
	assert.Equal(t, s.Expenses(), reopened.Expenses())
}

func TestNextMutationRetriesPendingWrite(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Store: memory.New()}
	s, err := Open(ctx, kv, WithLogger(log.Discard()))
	require.NoError(t, err)

	kv.setFail(true)
	_, err = s.AddExpense(ctx, draft(100, "food", "a", 2025, 1, 1))
	require.ErrorIs(t, err, ErrPersist)

	kv.setFail(false)
	_, err = s.AddCategory(ctx, core.CategoryDraft{Name: "Kids"})
	require.NoError(t, err)
	assert.False(t, s.Pending())

	reopened, err := Open(ctx, kv.Store, WithLogger(log.Discard()))
	require.NoError(t, err)
	assert.Len(t, reopened.Expenses(), 1)
}

func TestTotalsTrackMutations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New())

	sum := func() int64 {
		var n int64
		for _, e := range s.Expenses() {
			n += e.Amount.Cents
		}
		return n
	}

	a, err := s.AddExpense(ctx, draft(8000, "food", "Dinner", 2025, 1, 1))
	require.NoError(t, err)
	_, err = s.AddExpense(ctx, draft(2000, "travel", "Train", 2025, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(10000), core.TotalExpenses(s.Expenses()).Cents)

	require.NoError(t, s.EditExpense(ctx, a.ID, draft(333, "food", "Dinner", 2025, 1, 1)))
	assert.Equal(t, sum(), core.TotalExpenses(s.Expenses()).Cents)

	require.NoError(t, s.DeleteExpense(ctx, a.ID))
	assert.Equal(t, int64(2000), core.TotalExpenses(s.Expenses()).Cents)
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New())
	_, err := s.AddExpense(ctx, draft(100, "food", "a", 2025, 1, 1))
	require.NoError(t, err)

	exp := s.Expenses()
	exp[0].Description = "changed"
	cats := s.Categories()
	cats[0].Name = "changed"

	assert.Equal(t, "a", s.Expenses()[0].Description)
	assert.Equal(t, DefaultCategories()[0].Name, s.Categories()[0].Name)
}

func TestConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, memory.New())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AddExpense(ctx, draft(100, "food", "x", 2025, 1, 1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, s.Expenses(), 20)
	assert.Equal(t, int64(2000), core.TotalExpenses(s.Expenses()).Cents)
}
