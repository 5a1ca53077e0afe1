// Package grpc exposes the product catalog over gRPC. Messages are protobuf
// well-known types (Struct, Empty), so clients need no generated stubs.
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"

	perrors "github.com/abgdnv/productdesk/internal/errors"
	"github.com/abgdnv/productdesk/internal/service"
	plog "github.com/abgdnv/productdesk/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProductService is the part of service.ProductService the gRPC server needs.
type ProductService interface {
	ListAll(ctx context.Context) ([]service.ProductDto, error)
	Create(ctx context.Context, input service.ProductInput) (*service.Created, error)
	Update(ctx context.Context, id int64, input service.ProductInput) (*service.Listing, error)
	DeleteByID(ctx context.Context, id int64) (*service.Listing, error)
}

type Server struct {
	service ProductService
	logger  *slog.Logger
}

var _ CatalogServer = (*Server)(nil)

func NewServer(service ProductService, logger *slog.Logger) *Server {
	return &Server{
		service: service,
		logger:  plog.Component(logger, "grpc"),
	}
}

// ListProducts returns {"products": [...]}.
func (s *Server) ListProducts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	list, err := s.service.ListAll(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "ListAll", err)
	}
	return response(map[string]any{"products": productList(list)})
}

// CreateProduct expects {"name", "price"} and returns {"product", "products"}.
func (s *Server) CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := inputFrom(req)
	if err != nil {
		return nil, err
	}
	created, err := s.service.Create(ctx, input)
	if err != nil {
		return nil, s.toStatus(ctx, "Create", err)
	}
	s.logger.InfoContext(ctx, "Product created via gRPC", "ID", created.Product.ID)
	return response(map[string]any{
		"product":  productMap(created.Product),
		"products": productList(created.Products),
	})
}

// UpdateProduct expects {"id", "name", "price"} and returns {"products"}.
func (s *Server) UpdateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idFrom(req)
	if err != nil {
		return nil, err
	}
	input, err := inputFrom(req)
	if err != nil {
		return nil, err
	}
	listing, err := s.service.Update(ctx, id, input)
	if err != nil {
		return nil, s.toStatus(ctx, "Update", err)
	}
	return response(map[string]any{"products": productList(listing.Products)})
}

// DeleteProduct expects {"id"} and returns {"products"}.
func (s *Server) DeleteProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := idFrom(req)
	if err != nil {
		return nil, err
	}
	listing, err := s.service.DeleteByID(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, "DeleteByID", err)
	}
	return response(map[string]any{"products": productList(listing.Products)})
}

func (s *Server) toStatus(ctx context.Context, op string, err error) error {
	if errors.Is(err, perrors.ErrValidation) {
		var vErr *perrors.ValidationError
		if errors.As(err, &vErr) {
			return status.Errorf(codes.InvalidArgument, "%s %s", vErr.Field, vErr.Reason)
		}
		return status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.ErrorContext(ctx, "service."+op+" failed", slog.Any("error", err))
	return status.Error(codes.Internal, "internal server error")
}

// inputFrom reads name and price. Price is normally text as typed; a number is
// accepted and formatted back to text.
func inputFrom(req *structpb.Struct) (service.ProductInput, error) {
	var input service.ProductInput
	fields := req.GetFields()
	if v, ok := fields["name"]; ok {
		name, isString := v.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return input, status.Error(codes.InvalidArgument, "name must be a string")
		}
		input.Name = name.StringValue
	}
	if v, ok := fields["price"]; ok {
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			input.Price = kind.StringValue
		case *structpb.Value_NumberValue:
			input.Price = strconv.FormatFloat(kind.NumberValue, 'g', -1, 64)
		default:
			return input, status.Error(codes.InvalidArgument, "price must be a string or a number")
		}
	}
	return input, nil
}

func idFrom(req *structpb.Struct) (int64, error) {
	v, ok := req.GetFields()["id"]
	if !ok {
		return 0, status.Error(codes.InvalidArgument, "id is required")
	}
	var id float64
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		id = kind.NumberValue
	case *structpb.Value_StringValue:
		parsed, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "invalid product ID: %s", kind.StringValue)
		}
		id = float64(parsed)
	default:
		return 0, status.Error(codes.InvalidArgument, "id must be a number")
	}
	if id <= 0 || id != math.Trunc(id) || id > 1<<53 {
		return 0, status.Errorf(codes.InvalidArgument, "invalid product ID: %v", id)
	}
	return int64(id), nil
}

func productMap(p service.ProductDto) map[string]any {
	return map[string]any{
		"id":    p.ID,
		"name":  p.Name,
		"price": p.Price,
	}
}

func productList(list []service.ProductDto) []any {
	out := make([]any, 0, len(list))
	for _, p := range list {
		out = append(out, productMap(p))
	}
	return out
}

func response(fields map[string]any) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return st, nil
}
