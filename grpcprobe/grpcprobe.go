// Package grpcprobe instruments unary gRPC calls through the core dispatch
// contract. Each interceptor owns one timer source tagged by full method
// name; call latency, completion status, and message sizes are captured only
// while the source is active.
package grpcprobe

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"

	"mprobe"
)

// NewServerInterceptor declares the server call source and returns a unary
// server interceptor wrapping every handler in timed dispatch.
// Params: none.
// Returns: interceptor for grpc.ChainUnaryInterceptor.
func NewServerInterceptor() grpc.UnaryServerInterceptor {
	src := mprobe.NewTimer("grpc.server.call",
		mprobe.TagSchema{mprobe.TagString("method")},
		mprobe.FieldSchema{"req_bytes", "resp_bytes"},
		mprobe.WithDoc("unary server call duration, status, and message sizes"),
	)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var resp any
		out, err := mprobe.RRun(src,
			func() []mprobe.Tag { return src.Tags(info.FullMethod) },
			func() []mprobe.Field { return sizeFields(req, resp) },
			func() (any, error) {
				r, handlerErr := handler(ctx, req)
				resp = r
				return r, handlerErr
			},
		)
		return out, err
	}
}

// NewClientInterceptor declares the client call source and returns a unary
// client interceptor wrapping every invocation in timed dispatch.
// Params: none.
// Returns: interceptor for grpc.WithChainUnaryInterceptor.
func NewClientInterceptor() grpc.UnaryClientInterceptor {
	src := mprobe.NewTimer("grpc.client.call",
		mprobe.TagSchema{mprobe.TagString("method")},
		mprobe.FieldSchema{"req_bytes", "resp_bytes"},
		mprobe.WithDoc("unary client call duration, status, and message sizes"),
	)

	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		_, err := mprobe.RRun(src,
			func() []mprobe.Tag { return src.Tags(method) },
			func() []mprobe.Field { return sizeFields(req, reply) },
			func() (struct{}, error) {
				return struct{}{}, invoker(ctx, method, req, reply, cc, opts...)
			},
		)
		return err
	}
}

// sizeFields renders request/response proto sizes as data fields.
// Params: req and resp RPC messages, either may be nil or non-proto.
// Returns: byte-size fields in request, response order.
func sizeFields(req, resp any) []mprobe.Field {
	return []mprobe.Field{
		mprobe.Int("req_bytes", messageSize(req), mprobe.WithUnit("bytes")),
		mprobe.Int("resp_bytes", messageSize(resp), mprobe.WithUnit("bytes")),
	}
}

// messageSize returns the wire size of one proto message.
// Params: msg RPC message value.
// Returns: proto wire size, 0 for nil or non-proto values.
func messageSize(msg any) int {
	m, ok := msg.(proto.Message)
	if !ok || m == nil {
		return 0
	}
	return proto.Size(m)
}
