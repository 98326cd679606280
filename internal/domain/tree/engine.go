package tree

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/slug"
	"github.com/google/uuid"
)

// Engine применяет изменения к дереву согласно политике уровней.
// Методы возвращают новый корневой список: вызывающий код обязан присвоить его владельцу дерева.
type Engine struct {
	policy Policy
	newID  func() string
}

func NewEngine(policy Policy) *Engine {
	return &Engine{
		policy: policy,
		newID:  uuid.NewString,
	}
}

// Insert добавляет узел name в список потомков узла parentPath (пустой путь - корень).
func (en *Engine) Insert(root []*Node, parentPath []string, name string, legacyRef *string) ([]*Node, *Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, e.ErrNameRequired
	}

	nodeSlug := slug.Normalize(name)
	if nodeSlug == "" {
		return nil, nil, e.ErrEmptySlug
	}

	loc, err := Locate(root, parentPath, en.policy)
	if err != nil {
		return nil, nil, err
	}

	depth := len(parentPath)
	if depth >= en.policy.MaxDepth() {
		return nil, nil, fmt.Errorf("%w: %s cannot be nested deeper than %d levels",
			e.ErrDepthExceeded, en.policy.tier(depth).Label, en.policy.MaxDepth())
	}

	target := root
	if loc.Resolved != nil {
		target = loc.Resolved.Children
	}

	if legacyRef != nil && *legacyRef == "" {
		legacyRef = nil
	}

	tier := en.policy.tier(depth)
	for _, sibling := range target {
		if tier.UniqueSlug && sibling.Slug == nodeSlug {
			return nil, nil, fmt.Errorf("%w: %s %q", e.ErrSlugTaken, tier.Label, nodeSlug)
		}
		if legacyRef != nil && sibling.LegacyRef != nil && *sibling.LegacyRef == *legacyRef {
			return nil, nil, fmt.Errorf("%w: %s %q", e.ErrLegacyRefTaken, tier.Label, *legacyRef)
		}
	}

	node := &Node{
		ID:        en.newID(),
		Name:      name,
		Slug:      nodeSlug,
		LegacyRef: legacyRef,
		Children:  []*Node{},
	}

	if loc.Resolved == nil {
		return append(root, node), node, nil
	}

	loc.Resolved.Children = append(loc.Resolved.Children, node)
	return root, node, nil
}

// Rename меняет имя и slug узла fullPath на месте. Потомки, legacyRef и id не меняются.
// Пустое newName ничего не меняет. Уникальность среди соседей повторно не проверяется.
func (en *Engine) Rename(root []*Node, fullPath []string, newName string) (*Node, error) {
	if len(fullPath) == 0 {
		return nil, e.ErrPathRequired
	}

	loc, err := Locate(root, fullPath, en.policy)
	if err != nil {
		return nil, err
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return loc.Resolved, nil
	}

	nodeSlug := slug.Normalize(newName)
	if nodeSlug == "" {
		return nil, e.ErrEmptySlug
	}

	loc.Resolved.Name = newName
	loc.Resolved.Slug = nodeSlug

	return loc.Resolved, nil
}

// Delete удаляет узел fullPath вместе со всем поддеревом.
// Возвращает новый корневой список и удалённый узел.
func (en *Engine) Delete(root []*Node, fullPath []string) ([]*Node, *Node, error) {
	if len(fullPath) == 0 {
		return nil, nil, e.ErrPathRequired
	}

	parentPath, targetID := fullPath[:len(fullPath)-1], fullPath[len(fullPath)-1]
	loc, err := Locate(root, parentPath, en.policy)
	if err != nil {
		return nil, nil, err
	}

	list := root
	if loc.Resolved != nil {
		list = loc.Resolved.Children
	}

	var removed *Node
	kept := make([]*Node, 0, len(list))
	for _, n := range list {
		if n.ID == targetID {
			removed = n
			continue
		}
		kept = append(kept, n)
	}

	if len(kept) == len(list) {
		return nil, nil, fmt.Errorf("%w: %s %s", e.ErrNotFound, en.policy.tier(len(parentPath)).Label, targetID)
	}

	if loc.Resolved == nil {
		return kept, removed, nil
	}

	loc.Resolved.Children = kept
	return root, removed, nil
}
