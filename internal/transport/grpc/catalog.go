package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "productdesk.v1.ProductCatalog"

const (
	listProductsMethod  = "/" + ServiceName + "/ListProducts"
	createProductMethod = "/" + ServiceName + "/CreateProduct"
	updateProductMethod = "/" + ServiceName + "/UpdateProduct"
	deleteProductMethod = "/" + ServiceName + "/DeleteProduct"
)

// CatalogServer is the server API of ProductCatalog.
type CatalogServer interface {
	ListProducts(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CreateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteProduct(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCatalogServer registers srv on s.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListProducts",
			Handler:    unary(listProductsMethod, newEmpty, CatalogServer.ListProducts),
		},
		{
			MethodName: "CreateProduct",
			Handler:    unary(createProductMethod, newStruct, CatalogServer.CreateProduct),
		},
		{
			MethodName: "UpdateProduct",
			Handler:    unary(updateProductMethod, newStruct, CatalogServer.UpdateProduct),
		},
		{
			MethodName: "DeleteProduct",
			Handler:    unary(deleteProductMethod, newStruct, CatalogServer.DeleteProduct),
		},
	},
	Streams: []grpc.StreamDesc{},
}

func newEmpty() *emptypb.Empty { return new(emptypb.Empty) }
func newStruct() *structpb.Struct { return new(structpb.Struct) }

// unary adapts a typed method to grpc.MethodDesc's handler signature.
func unary[Req any](
	fullMethod string,
	newReq func() Req,
	call func(CatalogServer, context.Context, Req) (*structpb.Struct, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CatalogServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// CatalogClient calls ProductCatalog on a connection.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) ListProducts(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listProductsMethod, new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) CreateProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, createProductMethod, in, opts...)
}

func (c *CatalogClient) UpdateProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, updateProductMethod, in, opts...)
}

func (c *CatalogClient) DeleteProduct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, deleteProductMethod, in, opts...)
}

func (c *CatalogClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
