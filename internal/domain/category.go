package domain

import (
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain/tree"
)

// Category - корень агрегата таксономии. Обе вложенные структуры принадлежат категории
// и загружаются/сохраняются только вместе с ней.
type Category struct {
	ID                  string
	Name                string
	Slug                string
	Icon                string
	Color               string
	CreatedBy           string
	LegacySubcategories []*Subcategory
	Nodes               []*tree.Node
	Version             int64 // версия для оптимистичной блокировки
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

// Subcategory - легаси-уровень 1.
type Subcategory struct {
	ID                     string
	Name                   string
	Slug                   string
	SecondarySubcategories []*SecondarySubcategory
}

// SecondarySubcategory - легаси-уровень 2.
type SecondarySubcategory struct {
	ID   string
	Name string
	Slug string
}

func NewCategory(id, name, slug, icon, color, createdBy string, createdAt time.Time) *Category {
	return &Category{
		ID:                  id,
		Name:                name,
		Slug:                slug,
		Icon:                icon,
		Color:               color,
		CreatedBy:           createdBy,
		LegacySubcategories: []*Subcategory{},
		Nodes:               []*tree.Node{},
		CreatedAt:           createdAt,
	}
}

// Touch проставляет время последнего изменения.
func (c *Category) Touch(now time.Time) {
	c.UpdatedAt = &now
}

// LegacyTree представляет легаси-подкатегории в виде дерева для tree.Engine.
func (c *Category) LegacyTree() []*tree.Node {
	nodes := make([]*tree.Node, 0, len(c.LegacySubcategories))
	for _, sub := range c.LegacySubcategories {
		children := make([]*tree.Node, 0, len(sub.SecondarySubcategories))
		for _, sec := range sub.SecondarySubcategories {
			children = append(children, &tree.Node{ID: sec.ID, Name: sec.Name, Slug: sec.Slug})
		}

		nodes = append(nodes, &tree.Node{
			ID:       sub.ID,
			Name:     sub.Name,
			Slug:     sub.Slug,
			Children: children,
		})
	}

	return nodes
}

// SetLegacyTree заменяет легаси-подкатегории содержимым дерева.
// Узлы глубже второго уровня игнорируются: LegacyPolicy их не допускает.
func (c *Category) SetLegacyTree(nodes []*tree.Node) {
	subs := make([]*Subcategory, 0, len(nodes))
	for _, n := range nodes {
		secondaries := make([]*SecondarySubcategory, 0, len(n.Children))
		for _, child := range n.Children {
			secondaries = append(secondaries, &SecondarySubcategory{ID: child.ID, Name: child.Name, Slug: child.Slug})
		}

		subs = append(subs, &Subcategory{
			ID:                     n.ID,
			Name:                   n.Name,
			Slug:                   n.Slug,
			SecondarySubcategories: secondaries,
		})
	}

	c.LegacySubcategories = subs
}
