package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName は LogiflowService の完全修飾名です。
const ServiceName = "logiflow.v1.LogiflowService"

// LogiflowServer は LogiflowService のサーバー側インターフェースです。
// リクエストとレスポンスはどちらも structpb.Struct で、フィールド名は旧システムの JSON と揃えています。
type LogiflowServer interface {
	RequiredAttributes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	CreateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListTasks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

	ListAreas(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListRoles(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LogiflowServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// LogiflowServiceDesc は LogiflowService の grpc.ServiceDesc です。
var LogiflowServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LogiflowServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("RequiredAttributes", LogiflowServer.RequiredAttributes),
		methodDesc("CreateTask", LogiflowServer.CreateTask),
		methodDesc("GetTask", LogiflowServer.GetTask),
		methodDesc("UpdateTask", LogiflowServer.UpdateTask),
		methodDesc("DeleteTask", LogiflowServer.DeleteTask),
		methodDesc("ListTasks", LogiflowServer.ListTasks),
		methodDesc("CreateEmployee", LogiflowServer.CreateEmployee),
		methodDesc("GetEmployee", LogiflowServer.GetEmployee),
		methodDesc("UpdateEmployee", LogiflowServer.UpdateEmployee),
		methodDesc("DeleteEmployee", LogiflowServer.DeleteEmployee),
		methodDesc("ListEmployees", LogiflowServer.ListEmployees),
		methodDesc("ListAreas", LogiflowServer.ListAreas),
		methodDesc("ListRoles", LogiflowServer.ListRoles),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "logiflow/v1/logiflow.proto",
}

// RegisterLogiflowServer は srv を s に登録します。
func RegisterLogiflowServer(s grpc.ServiceRegistrar, srv LogiflowServer) {
	s.RegisterService(&LogiflowServiceDesc, srv)
}

// FullMethod は RPC の完全なメソッド名を返します。
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := FullMethod(name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LogiflowServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LogiflowServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
