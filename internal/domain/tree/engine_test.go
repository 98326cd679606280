package tree

import (
	"testing"

	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func sequentialIDs() func() string {
	var n int
	return func() string {
		n++
		return "id-" + string(rune('a'+n-1))
	}
}

func newTestEngine(policy Policy) *Engine {
	en := NewEngine(policy)
	en.newID = sequentialIDs()
	return en
}

func TestInsert_RootAndNested(t *testing.T) {
	en := newTestEngine(GenericPolicy)

	root, men, err := en.Insert(nil, nil, "Men", nil)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "men", men.Slug)
	assert.Equal(t, "id-a", men.ID)
	assert.NotNil(t, men.Children)

	root, shirts, err := en.Insert(root, []string{men.ID}, "Casual Shirts", nil)
	require.NoError(t, err)
	require.Len(t, root, 1)
	require.Len(t, root[0].Children, 1)
	assert.Same(t, shirts, root[0].Children[0])
	assert.Equal(t, "casual-shirts", shirts.Slug)
}

func TestInsert_Validation(t *testing.T) {
	en := newTestEngine(GenericPolicy)

	_, _, err := en.Insert(nil, nil, "   ", nil)
	assert.ErrorIs(t, err, e.ErrNameRequired)
	assert.ErrorIs(t, err, e.ErrValidation)

	_, _, err = en.Insert(nil, nil, "¿¡", nil)
	assert.ErrorIs(t, err, e.ErrEmptySlug)
	assert.ErrorIs(t, err, e.ErrValidation)
}

func TestInsert_MissingAncestor(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, men, err := en.Insert(nil, nil, "Men", nil)
	require.NoError(t, err)

	_, _, err = en.Insert(root, []string{men.ID, "ghost"}, "Shirts", nil)
	require.ErrorIs(t, err, e.ErrNotFound)
	assert.Contains(t, err.Error(), "ghost")
}

func TestInsert_DepthBound(t *testing.T) {
	en := newTestEngine(GenericPolicy)

	var (
		root []*Node
		path []string
	)
	for _, name := range []string{"Men", "Shirts", "Formal", "Cotton"} {
		var (
			node *Node
			err  error
		)
		root, node, err = en.Insert(root, path, name, nil)
		require.NoError(t, err, name)
		path = append(path, node.ID)
	}
	require.Len(t, path, GenericDepth)

	_, _, err := en.Insert(root, path, "Organic", nil)
	assert.ErrorIs(t, err, e.ErrDepthExceeded)
}

func TestInsert_SiblingConflicts(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, _, err := en.Insert(nil, nil, "phones", strPtr("old-17"))
	require.NoError(t, err)

	_, _, err = en.Insert(root, nil, "Phones", nil)
	assert.ErrorIs(t, err, e.ErrSlugTaken)
	assert.ErrorIs(t, err, e.ErrConflict)

	_, _, err = en.Insert(root, nil, "Tablets", strPtr("old-17"))
	assert.ErrorIs(t, err, e.ErrLegacyRefTaken)

	root, tablets, err := en.Insert(root, nil, "Tablets", strPtr(""))
	require.NoError(t, err)
	assert.Nil(t, tablets.LegacyRef)
	assert.Len(t, root, 2)
}

func TestInsert_SameSlugUnderDifferentParents(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, men, err := en.Insert(nil, nil, "Men", nil)
	require.NoError(t, err)
	root, women, err := en.Insert(root, nil, "Women", nil)
	require.NoError(t, err)

	root, _, err = en.Insert(root, []string{men.ID}, "Shoes", nil)
	require.NoError(t, err)
	_, _, err = en.Insert(root, []string{women.ID}, "Shoes", nil)
	assert.NoError(t, err)
}

func TestLegacyPolicy_SecondaryTierAllowsDuplicates(t *testing.T) {
	en := newTestEngine(LegacyPolicy)
	root, sub, err := en.Insert(nil, nil, "Laptops", nil)
	require.NoError(t, err)

	_, _, err = en.Insert(root, nil, "Laptops", nil)
	assert.ErrorIs(t, err, e.ErrSlugTaken)

	root, _, err = en.Insert(root, []string{sub.ID}, "Gaming", nil)
	require.NoError(t, err)
	root, sec, err := en.Insert(root, []string{sub.ID}, "Gaming", nil)
	require.NoError(t, err)
	assert.Len(t, root[0].Children, 2)

	_, _, err = en.Insert(root, []string{sub.ID, sec.ID}, "Too deep", nil)
	assert.ErrorIs(t, err, e.ErrDepthExceeded)
}

func TestRename(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, men, err := en.Insert(nil, nil, "Men", strPtr("m-1"))
	require.NoError(t, err)
	root, shirts, err := en.Insert(root, []string{men.ID}, "Shirts", nil)
	require.NoError(t, err)

	renamed, err := en.Rename(root, []string{men.ID}, "  Gentlemen ")
	require.NoError(t, err)
	assert.Same(t, men, renamed)
	assert.Equal(t, "Gentlemen", men.Name)
	assert.Equal(t, "gentlemen", men.Slug)
	assert.Equal(t, "m-1", *men.LegacyRef)
	require.Len(t, men.Children, 1)
	assert.Same(t, shirts, men.Children[0])

	unchanged, err := en.Rename(root, []string{men.ID, shirts.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, "Shirts", unchanged.Name)

	_, err = en.Rename(root, []string{men.ID, "missing"}, "X")
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, err = en.Rename(root, nil, "X")
	assert.ErrorIs(t, err, e.ErrPathRequired)

	_, err = en.Rename(root, []string{men.ID}, "!!")
	assert.ErrorIs(t, err, e.ErrEmptySlug)
}

func TestRename_DoesNotRecheckSiblings(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, _, err := en.Insert(nil, nil, "Phones", nil)
	require.NoError(t, err)
	root, tablets, err := en.Insert(root, nil, "Tablets", nil)
	require.NoError(t, err)

	_, err = en.Rename(root, []string{tablets.ID}, "Phones")
	require.NoError(t, err)
	assert.Equal(t, root[0].Slug, root[1].Slug)
}

func TestDelete_RemovesSubtree(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, men, err := en.Insert(nil, nil, "Men", nil)
	require.NoError(t, err)
	root, women, err := en.Insert(root, nil, "Women", nil)
	require.NoError(t, err)
	root, shirts, err := en.Insert(root, []string{men.ID}, "Shirts", nil)
	require.NoError(t, err)
	root, formal, err := en.Insert(root, []string{men.ID, shirts.ID}, "Formal", nil)
	require.NoError(t, err)

	doomed := SubtreeIDs(men)
	assert.ElementsMatch(t, []string{men.ID, shirts.ID, formal.ID}, doomed)

	root, removed, err := en.Delete(root, []string{men.ID})
	require.NoError(t, err)
	assert.Same(t, men, removed)
	require.Len(t, root, 1)
	assert.Same(t, women, root[0])
	for _, id := range doomed {
		assert.Nil(t, Find(root, id), id)
	}
}

func TestDelete_Nested(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, men, err := en.Insert(nil, nil, "Men", nil)
	require.NoError(t, err)
	root, shirts, err := en.Insert(root, []string{men.ID}, "Shirts", nil)
	require.NoError(t, err)
	root, _, err = en.Insert(root, []string{men.ID}, "Shoes", nil)
	require.NoError(t, err)

	root, _, err = en.Delete(root, []string{men.ID, shirts.ID})
	require.NoError(t, err)
	require.Len(t, root[0].Children, 1)
	assert.Equal(t, "shoes", root[0].Children[0].Slug)
}

func TestDelete_NotFound(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, men, err := en.Insert(nil, nil, "Men", nil)
	require.NoError(t, err)

	_, _, err = en.Delete(root, []string{men.ID, "missing"})
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, _, err = en.Delete(root, []string{"missing", men.ID})
	assert.ErrorIs(t, err, e.ErrNotFound)

	_, _, err = en.Delete(root, nil)
	assert.ErrorIs(t, err, e.ErrPathRequired)

	require.Len(t, root, 1)
	assert.Same(t, men, root[0])
}

func TestLocate(t *testing.T) {
	en := newTestEngine(GenericPolicy)
	root, men, err := en.Insert(nil, nil, "Men", nil)
	require.NoError(t, err)
	root, shirts, err := en.Insert(root, []string{men.ID}, "Shirts", nil)
	require.NoError(t, err)

	loc, err := Locate(root, nil, GenericPolicy)
	require.NoError(t, err)
	assert.Nil(t, loc.Resolved)
	assert.Empty(t, loc.Ancestors)
	assert.Len(t, loc.Siblings, 1)

	loc, err = Locate(root, []string{men.ID, shirts.ID}, GenericPolicy)
	require.NoError(t, err)
	assert.Same(t, shirts, loc.Resolved)
	assert.Same(t, men, loc.Parent())
	assert.Equal(t, []*Node{men, shirts}, loc.Ancestors)
	assert.Equal(t, men.Children, loc.Siblings)

	_, err = Locate(root, []string{"nope"}, LegacyPolicy)
	require.ErrorIs(t, err, e.ErrNotFound)
	assert.Contains(t, err.Error(), "subcategory nope")
}
