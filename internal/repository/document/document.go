// Package document описывает хранимую форму агрегата категории: одна запись
// на категорию, обе вложенные структуры сериализуются вместе с ней.
package document

import (
	"time"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/domain/tree"
)

type Category struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Slug                string         `json:"slug"`
	Icon                string         `json:"icon"`
	Color               string         `json:"color"`
	CreatedBy           string         `json:"createdBy"`
	LegacySubcategories []*Subcategory `json:"legacySubcategories"`
	Nodes               []*Node        `json:"nodes"`
	Version             int64          `json:"version"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           *time.Time     `json:"updatedAt"`
}

type Subcategory struct {
	ID                     string       `json:"id"`
	Name                   string       `json:"name"`
	Slug                   string       `json:"slug"`
	SecondarySubcategories []*Secondary `json:"secondarySubcategories"`
}

type Secondary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Node struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	LegacyRef *string `json:"legacyRef"`
	Children  []*Node `json:"children"`
}

func FromDomain(c *domain.Category) *Category {
	return &Category{
		ID:                  c.ID,
		Name:                c.Name,
		Slug:                c.Slug,
		Icon:                c.Icon,
		Color:               c.Color,
		CreatedBy:           c.CreatedBy,
		LegacySubcategories: FromSubcategories(c.LegacySubcategories),
		Nodes:               FromNodes(c.Nodes),
		Version:             c.Version,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func (d *Category) ToDomain() *domain.Category {
	return &domain.Category{
		ID:                  d.ID,
		Name:                d.Name,
		Slug:                d.Slug,
		Icon:                d.Icon,
		Color:               d.Color,
		CreatedBy:           d.CreatedBy,
		LegacySubcategories: ToSubcategories(d.LegacySubcategories),
		Nodes:               ToNodes(d.Nodes),
		Version:             d.Version,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// FromSubcategories всегда возвращает не-nil срез, чтобы в JSON был [] вместо null.
func FromSubcategories(subs []*domain.Subcategory) []*Subcategory {
	res := make([]*Subcategory, 0, len(subs))
	for _, s := range subs {
		secondaries := make([]*Secondary, 0, len(s.SecondarySubcategories))
		for _, sec := range s.SecondarySubcategories {
			secondaries = append(secondaries, &Secondary{ID: sec.ID, Name: sec.Name, Slug: sec.Slug})
		}

		res = append(res, &Subcategory{
			ID:                     s.ID,
			Name:                   s.Name,
			Slug:                   s.Slug,
			SecondarySubcategories: secondaries,
		})
	}

	return res
}

func ToSubcategories(subs []*Subcategory) []*domain.Subcategory {
	res := make([]*domain.Subcategory, 0, len(subs))
	for _, s := range subs {
		secondaries := make([]*domain.SecondarySubcategory, 0, len(s.SecondarySubcategories))
		for _, sec := range s.SecondarySubcategories {
			secondaries = append(secondaries, &domain.SecondarySubcategory{ID: sec.ID, Name: sec.Name, Slug: sec.Slug})
		}

		res = append(res, &domain.Subcategory{
			ID:                     s.ID,
			Name:                   s.Name,
			Slug:                   s.Slug,
			SecondarySubcategories: secondaries,
		})
	}

	return res
}

func FromNodes(nodes []*tree.Node) []*Node {
	res := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, &Node{
			ID:        n.ID,
			Name:      n.Name,
			Slug:      n.Slug,
			LegacyRef: n.LegacyRef,
			Children:  FromNodes(n.Children),
		})
	}

	return res
}

func ToNodes(nodes []*Node) []*tree.Node {
	res := make([]*tree.Node, 0, len(nodes))
	for _, n := range nodes {
		res = append(res, &tree.Node{
			ID:        n.ID,
			Name:      n.Name,
			Slug:      n.Slug,
			LegacyRef: n.LegacyRef,
			Children:  ToNodes(n.Children),
		})
	}

	return res
}
