package handler

import (
	"context"
	"net"
	"sync/atomic"
	"testing"

	"github.com/ogurasousui/logiflow/internal/core/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func dialBufconn(t *testing.T, srv LogiflowServer, opts ...grpc.ServerOption) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterLogiflowServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestLogiflowServiceDesc_RoundTrip(t *testing.T) {
	t.Parallel()

	refs := stubReferences{areas: []domain.Area{{ID: 1, Name: "Almacen"}}}
	h := NewLogiflowHandler(&stubTaskUseCase{}, &stubEmployeeUseCase{}, refs)

	var intercepted atomic.Value
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		intercepted.Store(info.FullMethod)
		return handler(ctx, req)
	}
	conn := dialBufconn(t, h, grpc.UnaryInterceptor(interceptor))

	out := new(structpb.Struct)
	if err := conn.Invoke(context.Background(), FullMethod("ListAreas"), &structpb.Struct{}, out); err != nil {
		t.Fatalf("Invoke ListAreas: %v", err)
	}
	if got, _ := intercepted.Load().(string); got != "/logiflow.v1.LogiflowService/ListAreas" {
		t.Fatalf("unexpected intercepted method %q", got)
	}
	if n := len(out.GetFields()["areas"].GetListValue().GetValues()); n != 1 {
		t.Fatalf("expected 1 area, got %d", n)
	}

	req, err := structpb.NewStruct(map[string]any{"tipoTarea": "desconocida"})
	if err != nil {
		t.Fatalf("structpb.NewStruct: %v", err)
	}
	err = conn.Invoke(context.Background(), FullMethod("RequiredAttributes"), req, new(structpb.Struct))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument over the wire, got %v", err)
	}
}

func TestLogiflowServiceDesc_MethodsMatchInterface(t *testing.T) {
	t.Parallel()

	if got := len(LogiflowServiceDesc.Methods); got != 13 {
		t.Fatalf("expected 13 methods, got %d", got)
	}
	seen := make(map[string]bool)
	for _, m := range LogiflowServiceDesc.Methods {
		if seen[m.MethodName] {
			t.Fatalf("duplicate method %s", m.MethodName)
		}
		seen[m.MethodName] = true
	}
}
