package grpc

import (
	"encoding/json"
	"errors"

	"github.com/DRSN-tech/taxonomy-backend/internal/domain"
	"github.com/DRSN-tech/taxonomy-backend/internal/repository/document"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, e.ErrCategoryNotFound.Error())
	case errors.Is(err, e.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, e.ErrDepthExceeded):
		return status.Error(codes.FailedPrecondition, e.ErrDepthExceeded.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// toGRPCCategory переводит категорию в Struct той же формы, что и REST-ответ.
func toGRPCCategory(c *domain.Category) (*structpb.Struct, error) {
	raw, err := json.Marshal(document.FromDomain(c))
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	return structpb.NewStruct(fields)
}

func toGRPCCategoryList(categories []*domain.Category) (*structpb.Struct, error) {
	items := make([]*structpb.Value, 0, len(categories))
	for _, c := range categories {
		s, err := toGRPCCategory(c)
		if err != nil {
			return nil, err
		}
		items = append(items, structpb.NewStructValue(s))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"categories": structpb.NewListValue(&structpb.ListValue{Values: items}),
	}}, nil
}
