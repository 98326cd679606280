package domain

import (
	"testing"
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyTree_MutationsFlowBackIntoCategory(t *testing.T) {
	c := NewCategory("c1", "Electronics", "electronics", "", "", "u1", time.Now())
	c.LegacySubcategories = []*Subcategory{
		{ID: "s1", Name: "Laptops", Slug: "laptops", SecondarySubcategories: []*SecondarySubcategory{
			{ID: "x1", Name: "Gaming", Slug: "gaming"},
		}},
	}

	en := tree.NewEngine(tree.LegacyPolicy)
	legacy := c.LegacyTree()

	legacy, sec, err := en.Insert(legacy, []string{"s1"}, "Gaming", nil)
	require.NoError(t, err)
	legacy, sub, err := en.Insert(legacy, nil, "Phones", nil)
	require.NoError(t, err)
	c.SetLegacyTree(legacy)

	require.Len(t, c.LegacySubcategories, 2)
	laptops := c.LegacySubcategories[0]
	assert.Equal(t, "s1", laptops.ID)
	require.Len(t, laptops.SecondarySubcategories, 2)
	assert.Equal(t, "x1", laptops.SecondarySubcategories[0].ID)
	assert.Equal(t, sec.ID, laptops.SecondarySubcategories[1].ID)
	assert.Equal(t, "gaming", laptops.SecondarySubcategories[1].Slug)
	assert.Equal(t, sub.ID, c.LegacySubcategories[1].ID)
	assert.Empty(t, c.LegacySubcategories[1].SecondarySubcategories)
}

func TestTouch(t *testing.T) {
	c := NewCategory("c1", "Electronics", "electronics", "", "", "u1", time.Now())
	assert.Nil(t, c.UpdatedAt)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.Touch(now)
	require.NotNil(t, c.UpdatedAt)
	assert.Equal(t, now, *c.UpdatedAt)
}
