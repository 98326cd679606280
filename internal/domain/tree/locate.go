package tree

import (
	"fmt"

	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
)

// Location - результат разрешения пути.
type Location struct {
	Ancestors []*Node // цепочка найденных узлов, последний из них - Resolved
	Resolved  *Node   // nil для пустого пути
	Siblings  []*Node // список, непосредственно содержащий Resolved (для пустого пути - корень)
}

// Parent возвращает родителя Resolved или nil, если Resolved лежит в корневом списке.
func (l *Location) Parent() *Node {
	if len(l.Ancestors) < 2 {
		return nil
	}

	return l.Ancestors[len(l.Ancestors)-2]
}

// Locate проходит дерево по идентификаторам path, начиная с root.
// Возвращает ошибку e.ErrNotFound с первым неразрешённым сегментом.
func Locate(root []*Node, path []string, policy Policy) (*Location, error) {
	loc := &Location{
		Ancestors: make([]*Node, 0, len(path)),
		Siblings:  root,
	}

	current := root
	for depth, id := range path {
		found := indexOf(current, id)
		if found < 0 {
			return nil, fmt.Errorf("%w: %s %s", e.ErrNotFound, policy.tier(depth).Label, id)
		}

		node := current[found]
		loc.Ancestors = append(loc.Ancestors, node)
		loc.Resolved = node
		loc.Siblings = current
		current = node.Children
	}

	return loc, nil
}

func indexOf(list []*Node, id string) int {
	for i, n := range list {
		if n.ID == id {
			return i
		}
	}

	return -1
}
