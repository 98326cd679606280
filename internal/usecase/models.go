package usecase

// CATEGORY

// CreateCategoryReq - запрос на создание категории.
type CreateCategoryReq struct {
	Name    string
	Icon    string
	Color   string
	OwnerID string
}

// UpdateCategoryReq - частичное обновление категории; nil-поля не меняются.
type UpdateCategoryReq struct {
	CategoryID string
	Name       *string
	Icon       *string
	Color      *string
}

// GENERIC TREE

// AddNodeReq - вставка узла под ParentPath (пустой путь - корень дерева категории).
type AddNodeReq struct {
	CategoryID string
	ParentPath []string
	Name       string
	LegacyRef  *string
}

type UpdateNodeReq struct {
	CategoryID string
	FullPath   []string
	Name       *string
}

type DeleteNodeReq struct {
	CategoryID string
	FullPath   []string
}

// LEGACY TREE

type AddSubcategoryReq struct {
	CategoryID string
	Name       string
}

type UpdateSubcategoryReq struct {
	CategoryID    string
	SubcategoryID string
	Name          *string
}

type DeleteSubcategoryReq struct {
	CategoryID    string
	SubcategoryID string
}

type AddSecondaryReq struct {
	CategoryID    string
	SubcategoryID string
	Name          string
}

type UpdateSecondaryReq struct {
	CategoryID    string
	SubcategoryID string
	SecondaryID   string
	Name          *string
}

type DeleteSecondaryReq struct {
	CategoryID    string
	SubcategoryID string
	SecondaryID   string
}

// INFRASTRUCTURE

// WriteRawMessageReq - сообщение для публикации в Kafka.
type WriteRawMessageReq struct {
	EventID     string
	EventType   OutboxEventType
	AggregateID string
	Payload     []byte
}

// MAPPERS

func NewCreateCategoryReq(name, icon, color, ownerID string) *CreateCategoryReq {
	return &CreateCategoryReq{
		Name:    name,
		Icon:    icon,
		Color:   color,
		OwnerID: ownerID,
	}
}

func NewUpdateCategoryReq(categoryID string, name, icon, color *string) *UpdateCategoryReq {
	return &UpdateCategoryReq{
		CategoryID: categoryID,
		Name:       name,
		Icon:       icon,
		Color:      color,
	}
}

func NewAddNodeReq(categoryID string, parentPath []string, name string, legacyRef *string) *AddNodeReq {
	return &AddNodeReq{
		CategoryID: categoryID,
		ParentPath: parentPath,
		Name:       name,
		LegacyRef:  legacyRef,
	}
}

func NewUpdateNodeReq(categoryID string, fullPath []string, name *string) *UpdateNodeReq {
	return &UpdateNodeReq{
		CategoryID: categoryID,
		FullPath:   fullPath,
		Name:       name,
	}
}

func NewDeleteNodeReq(categoryID string, fullPath []string) *DeleteNodeReq {
	return &DeleteNodeReq{
		CategoryID: categoryID,
		FullPath:   fullPath,
	}
}

func NewAddSubcategoryReq(categoryID, name string) *AddSubcategoryReq {
	return &AddSubcategoryReq{CategoryID: categoryID, Name: name}
}

func NewUpdateSubcategoryReq(categoryID, subcategoryID string, name *string) *UpdateSubcategoryReq {
	return &UpdateSubcategoryReq{CategoryID: categoryID, SubcategoryID: subcategoryID, Name: name}
}

func NewDeleteSubcategoryReq(categoryID, subcategoryID string) *DeleteSubcategoryReq {
	return &DeleteSubcategoryReq{CategoryID: categoryID, SubcategoryID: subcategoryID}
}

func NewAddSecondaryReq(categoryID, subcategoryID, name string) *AddSecondaryReq {
	return &AddSecondaryReq{CategoryID: categoryID, SubcategoryID: subcategoryID, Name: name}
}

func NewUpdateSecondaryReq(categoryID, subcategoryID, secondaryID string, name *string) *UpdateSecondaryReq {
	return &UpdateSecondaryReq{
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		SecondaryID:   secondaryID,
		Name:          name,
	}
}

func NewDeleteSecondaryReq(categoryID, subcategoryID, secondaryID string) *DeleteSecondaryReq {
	return &DeleteSecondaryReq{
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		SecondaryID:   secondaryID,
	}
}

func NewWriteRawMessageReq(eventID string, eventType OutboxEventType, aggregateID string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
	}
}
