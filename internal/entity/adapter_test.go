package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type task struct {
	ID   string
	Name string
	Done bool
}

func taskAdapter() Adapter[task] {
	cmp := LocaleCompare(language.English)
	return NewAdapter(
		func(t task) string { return t.ID },
		WithSortComparer(func(a, b task) int { return cmp(a.Name, b.Name) }),
	)
}

func unsortedAdapter() Adapter[task] {
	return NewAdapter(func(t task) string { return t.ID })
}

func TestAddManySortsByComparer(t *testing.T) {
	ad := taskAdapter()

	next := ad.AddMany(NewState[task](), []task{
		{ID: "3", Name: "Charlie"},
		{ID: "1", Name: "Alice"},
		{ID: "2", Name: "Bob"},
	})

	assert.Equal(t, []string{"1", "2", "3"}, next.IDs)
	assert.Len(t, next.Entities, 3)
	assert.Equal(t, "Bob", next.Entities["2"].Name)
}

func TestAddManyWithoutComparerKeepsInsertionOrder(t *testing.T) {
	ad := unsortedAdapter()

	next := ad.AddMany(NewState[task](), []task{
		{ID: "3", Name: "Charlie"},
		{ID: "1", Name: "Alice"},
	})

	assert.Equal(t, []string{"3", "1"}, next.IDs)
}

func TestNoOpsReturnSamePointer(t *testing.T) {
	ad := taskAdapter()
	base := ad.AddMany(NewState[task](), []task{
		{ID: "1", Name: "Alice"},
		{ID: "2", Name: "Bob"},
	})

	t.Run("addOne on present id", func(t *testing.T) {
		next := ad.AddOne(base, task{ID: "1", Name: "Impostor"})
		assert.Same(t, base, next)
		assert.Equal(t, "Alice", next.Entities["1"].Name)
	})

	t.Run("removeOne on absent id", func(t *testing.T) {
		assert.Same(t, base, ad.RemoveOne(base, "99"))
	})

	t.Run("updateOne on absent id", func(t *testing.T) {
		next := ad.UpdateOne(base, Update[task]{
			ID:      "99",
			Changes: func(tk task) task { tk.Done = true; return tk },
		})
		assert.Same(t, base, next)
	})

	t.Run("removeMany with no present ids", func(t *testing.T) {
		assert.Same(t, base, ad.RemoveMany(base, []string{"98", "99"}))
	})

	t.Run("addMany of empty slice", func(t *testing.T) {
		assert.Same(t, base, ad.AddMany(base, nil))
	})
}

func TestMutationsLeaveInputUntouched(t *testing.T) {
	ad := taskAdapter()
	base := ad.AddMany(NewState[task](), []task{
		{ID: "1", Name: "Alice"},
		{ID: "2", Name: "Bob"},
	})

	next := ad.RemoveOne(base, "1")

	require.NotSame(t, base, next)
	assert.Equal(t, []string{"2"}, next.IDs)
	assert.Equal(t, []string{"1", "2"}, base.IDs)
	assert.Len(t, base.Entities, 2)
}

func TestSetOneAlwaysAllocates(t *testing.T) {
	ad := taskAdapter()
	base := ad.AddOne(NewState[task](), task{ID: "1", Name: "Alice"})

	next := ad.SetOne(base, task{ID: "1", Name: "Alice"})

	assert.NotSame(t, base, next)
	assert.Equal(t, base.IDs, next.IDs)
}

func TestSetAllReplacesCollection(t *testing.T) {
	ad := taskAdapter()
	base := ad.AddMany(NewState[task](), []task{
		{ID: "1", Name: "Alice"},
		{ID: "2", Name: "Bob"},
	})

	next := ad.SetAll(base, []task{{ID: "7", Name: "Zed"}})

	assert.Equal(t, []string{"7"}, next.IDs)
	assert.Len(t, next.Entities, 1)
}

func TestUpdateOneResortsWhenSortKeyChanges(t *testing.T) {
	ad := taskAdapter()
	base := ad.AddMany(NewState[task](), []task{
		{ID: "1", Name: "Alice"},
		{ID: "2", Name: "Bob"},
		{ID: "3", Name: "Charlie"},
	})

	next := ad.UpdateOne(base, Update[task]{
		ID:      "1",
		Changes: func(tk task) task { tk.Name = "Zoe"; return tk },
	})

	assert.Equal(t, []string{"2", "3", "1"}, next.IDs)
}

func TestUpdateOneChangingIDRelocatesEntity(t *testing.T) {
	ad := unsortedAdapter()
	base := ad.AddMany(NewState[task](), []task{
		{ID: "1", Name: "Alice"},
		{ID: "2", Name: "Bob"},
	})

	next := ad.UpdateOne(base, Update[task]{
		ID:      "1",
		Changes: func(tk task) task { tk.ID = "9"; return tk },
	})

	assert.Equal(t, []string{"9", "2"}, next.IDs)
	_, stale := next.Entities["1"]
	assert.False(t, stale)
	assert.Equal(t, "Alice", next.Entities["9"].Name)
}

func TestUpdateOneChangingIDOntoOccupiedIDReplaces(t *testing.T) {
	ad := unsortedAdapter()
	base := ad.AddMany(NewState[task](), []task{
		{ID: "1", Name: "Alice"},
		{ID: "2", Name: "Bob"},
	})

	next := ad.UpdateOne(base, Update[task]{
		ID:      "1",
		Changes: func(tk task) task { tk.ID = "2"; return tk },
	})

	assert.Equal(t, []string{"2"}, next.IDs, "ids stay duplicate-free after the move")
	assert.Len(t, next.Entities, 1)
	assert.Equal(t, "Alice", next.Entities["2"].Name, "the moved entity replaces the occupant")
}

func TestUpsertOneMergesOrAdds(t *testing.T) {
	ad := taskAdapter()
	base := ad.AddOne(NewState[task](), task{ID: "1", Name: "Alice"})

	updated := ad.UpsertOne(base, task{ID: "1", Name: "Alice", Done: true})
	require.True(t, updated.Entities["1"].Done)

	grown := ad.UpsertOne(updated, task{ID: "2", Name: "Bob"})
	assert.Equal(t, []string{"1", "2"}, grown.IDs)
}

func TestRemoveAllYieldsEmptyState(t *testing.T) {
	ad := taskAdapter()
	base := ad.AddOne(NewState[task](), task{ID: "1", Name: "Alice"})

	next := ad.RemoveAll(base)

	assert.Empty(t, next.IDs)
	assert.Empty(t, next.Entities)
}

func TestSelectorsReadCollection(t *testing.T) {
	ad := taskAdapter()
	sel := ad.Selectors()
	s := ad.AddMany(NewState[task](), []task{
		{ID: "2", Name: "Bob"},
		{ID: "1", Name: "Alice"},
	})

	assert.Equal(t, []string{"1", "2"}, sel.SelectIDs(s))
	assert.Equal(t, 2, sel.SelectTotal(s))

	all := sel.SelectAll(s)
	require.Len(t, all, 2)
	assert.Equal(t, "Alice", all[0].Name)
	assert.Equal(t, "Bob", all[1].Name)
}

func TestScopedSelectorsNarrowFromRoot(t *testing.T) {
	ad := taskAdapter()
	s := ad.AddOne(NewState[task](), task{ID: "1", Name: "Alice"})
	root := map[string]any{"tasks": s}

	scoped := ad.ScopedSelectors(func(root any) *State[task] {
		m, ok := root.(map[string]any)
		if !ok {
			return nil
		}
		st, _ := m["tasks"].(*State[task])
		return st
	})

	assert.Equal(t, []string{"1"}, scoped.SelectIDs(root))
	assert.Equal(t, 1, scoped.SelectTotal(root))
	assert.Equal(t, 0, scoped.SelectTotal(nil))
	assert.Empty(t, scoped.SelectAll("not a map"))
}

func TestLocaleCompareOrdersCaseInsensitively(t *testing.T) {
	cmp := LocaleCompare(language.English)

	assert.Negative(t, cmp("apple", "Banana"))
	assert.Positive(t, cmp("cherry", "Banana"))
}
