package grpc

import (
	"context"

	"github.com/DRSN-tech/taxonomy-backend/internal/usecase"
	"github.com/DRSN-tech/taxonomy-backend/pkg/e"
	"github.com/DRSN-tech/taxonomy-backend/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const TaxonomyServiceName = "taxonomy.v1.TaxonomyService"

const (
	listCategoriesMethod = "/" + TaxonomyServiceName + "/ListCategories"
	getCategoryMethod    = "/" + TaxonomyServiceName + "/GetCategory"
)

// TaxonomyServiceServer - read-only доступ к категориям. Сообщения описаны
// well-known типами protobuf, поэтому сервису не нужен сгенерированный код.
type TaxonomyServiceServer interface {
	ListCategories(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var TaxonomyServiceDesc = grpc.ServiceDesc{
	ServiceName: TaxonomyServiceName,
	HandlerType: (*TaxonomyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListCategories", Handler: listCategoriesHandler},
		{MethodName: "GetCategory", Handler: getCategoryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "taxonomy/v1/taxonomy.proto",
}

func RegisterTaxonomyServiceServer(s grpc.ServiceRegistrar, srv TaxonomyServiceServer) {
	s.RegisterService(&TaxonomyServiceDesc, srv)
}

func listCategoriesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TaxonomyServiceServer).ListCategories(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listCategoriesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TaxonomyServiceServer).ListCategories(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getCategoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TaxonomyServiceServer).GetCategory(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getCategoryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TaxonomyServiceServer).GetCategory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type TaxonomyService struct {
	taxonomyUC usecase.TaxonomyUC
	logger     logger.Logger
}

func NewTaxonomyService(taxonomyUC usecase.TaxonomyUC, logger logger.Logger) *TaxonomyService {
	return &TaxonomyService{taxonomyUC: taxonomyUC, logger: logger}
}

func (g *TaxonomyService) ListCategories(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	const op = "grpc.ListCategories"

	categories, err := g.taxonomyUC.ListCategories(ctx)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := toGRPCCategoryList(categories)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s: encode response", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

// GetCategory ожидает запрос вида {"id": "<category id>"}.
func (g *TaxonomyService) GetCategory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.GetCategory"

	id := req.GetFields()["id"].GetStringValue()
	if id == "" {
		return nil, GRPCErrorResponse(e.Wrap(op, e.ErrIDRequired))
	}

	category, err := g.taxonomyUC.GetCategory(ctx, id)
	if err != nil {
		g.logger.Warnf("%s: %v", op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := toGRPCCategory(category)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s: encode response", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

// TaxonomyServiceClient - клиент к TaxonomyService поверх произвольного соединения.
type TaxonomyServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTaxonomyServiceClient(cc grpc.ClientConnInterface) *TaxonomyServiceClient {
	return &TaxonomyServiceClient{cc: cc}
}

func (c *TaxonomyServiceClient) ListCategories(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listCategoriesMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TaxonomyServiceClient) GetCategory(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{"id": structpb.NewStringValue(id)}}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getCategoryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
