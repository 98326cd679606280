// Package tree реализует поиск по пути и изменение (вставка, переименование, удаление)
// вложенных деревьев таксономии. Один и тот же движок обслуживает обобщённое дерево
// узлов категории и легаси-структуру подкатегорий; различаются они только политикой уровней.
package tree

// Node - узел дерева таксономии.
type Node struct {
	ID        string
	Name      string
	Slug      string
	LegacyRef *string // внешний ключ миграции, необязательный
	Children  []*Node
}

// Tier описывает правила одного уровня дерева.
type Tier struct {
	Label      string // используется в сообщениях об ошибках
	UniqueSlug bool   // проверять ли уникальность slug среди соседей
}

// Policy - набор уровней дерева. Узел может быть вставлен на глубину d,
// только если d < len(Tiers); глубина 0 соответствует корневому списку.
type Policy struct {
	Tiers []Tier
}

// MaxDepth возвращает число допустимых уровней узлов.
func (p Policy) MaxDepth() int {
	return len(p.Tiers)
}

func (p Policy) tier(depth int) Tier {
	if depth < len(p.Tiers) {
		return p.Tiers[depth]
	}

	return Tier{Label: "node"}
}

// GenericDepth - число уровней обобщённого дерева под категорией.
const GenericDepth = 4

var (
	// GenericPolicy - обобщённое дерево узлов: 4 уровня, slug уникален на каждом.
	GenericPolicy = Policy{Tiers: []Tier{
		{Label: "node", UniqueSlug: true},
		{Label: "node", UniqueSlug: true},
		{Label: "node", UniqueSlug: true},
		{Label: "node", UniqueSlug: true},
	}}

	// LegacyPolicy - фиксированная структура Subcategory → SecondarySubcategory.
	// Slug вторичных подкатегорий исторически не проверяется на уникальность.
	LegacyPolicy = Policy{Tiers: []Tier{
		{Label: "subcategory", UniqueSlug: true},
		{Label: "secondary subcategory", UniqueSlug: false},
	}}
)

// Find ищет узел по идентификатору во всём дереве (обход в глубину).
func Find(root []*Node, id string) *Node {
	for _, n := range root {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}

	return nil
}

// SubtreeIDs возвращает идентификатор узла и всех его потомков.
func SubtreeIDs(n *Node) []string {
	if n == nil {
		return nil
	}

	ids := []string{n.ID}
	for _, child := range n.Children {
		ids = append(ids, SubtreeIDs(child)...)
	}

	return ids
}
