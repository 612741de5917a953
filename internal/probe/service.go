package probe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DjordjeVuckovic/probe-report/internal/task"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type probeServer interface {
	predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	weights(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type service struct {
	probe Probe
}

// RegisterService exposes p as ProbeService on s.
func RegisterService(s grpc.ServiceRegistrar, p Probe) {
	s.RegisterService(&serviceDesc, &service{probe: p})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*probeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PredictOnBatch", Handler: unaryHandler(methodPredict, probeServer.predict)},
		{MethodName: "GetTaskDiagonalWeights", Handler: unaryHandler(methodWeights, probeServer.weights)},
	},
	Metadata: "probe/v1/probe.proto",
}

func unaryHandler(method string, call func(probeServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(probeServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(probeServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func (s *service) predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	t, err := requestTask(req)
	if err != nil {
		return nil, err
	}

	v, err := field(req, fieldNumTokens)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	numTokens, err := toInts(v)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s: %v", fieldNumTokens, err)
	}

	if v, err = field(req, fieldEmbeddings); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	embeddings, err := toTensor(v)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s: %v", fieldEmbeddings, err)
	}

	var gate []float64
	if v, ok := req.GetFields()[fieldGate]; ok && v.GetListValue() != nil {
		if gate, err = toVector(v); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "%s: %v", fieldGate, err)
		}
	}

	lang := req.GetFields()[fieldLanguage].GetStringValue()
	predicted, err := s.probe.PredictOnBatch(ctx, numTokens, embeddings, lang, t, gate)
	if err != nil {
		slog.Warn("predict failed", "task", t.Name, "language", lang, "error", err)
		return nil, toStatus(err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldPredicted: tensorValue(predicted),
	}}, nil
}

func (s *service) weights(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	t, err := requestTask(req)
	if err != nil {
		return nil, err
	}
	w, err := s.probe.TaskDiagonalWeights(ctx, t)
	if err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldWeights: vectorValue(w),
	}}, nil
}

func requestTask(req *structpb.Struct) (task.Task, error) {
	t, err := task.Parse(req.GetFields()[fieldTask].GetStringValue())
	if err != nil {
		return task.Task{}, status.Error(codes.InvalidArgument, err.Error())
	}
	return t, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrUnknownTask):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.InvalidArgument, err.Error())
	}
}
