package probe

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/probe-report/internal/task"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// Remote calls a probe served over gRPC by ProbeService.
type Remote struct {
	conn *grpc.ClientConn
	cc   grpc.ClientConnInterface
}

// NewRemote connects to a probe inference service.
func NewRemote(addr string, opts ...grpc.DialOption) (*Remote, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Remote{conn: conn, cc: conn}, nil
}

// NewRemoteWithConn uses an existing connection, which the caller keeps ownership of.
func NewRemoteWithConn(cc grpc.ClientConnInterface) *Remote {
	return &Remote{cc: cc}
}

func (r *Remote) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

func (r *Remote) PredictOnBatch(ctx context.Context, numTokens []int, embeddings [][][]float64, lang string, t task.Task, gate []float64) ([][][]float64, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldNumTokens:  intsValue(numTokens),
		fieldEmbeddings: tensorValue(embeddings),
		fieldLanguage:   structpb.NewStringValue(lang),
		fieldTask:       structpb.NewStringValue(t.Name),
	}}
	if gate != nil {
		req.Fields[fieldGate] = vectorValue(gate)
	}

	resp := new(structpb.Struct)
	if err := r.cc.Invoke(ctx, methodPredict, req, resp); err != nil {
		return nil, fmt.Errorf("predict rpc: %w", err)
	}

	v, err := field(resp, fieldPredicted)
	if err != nil {
		return nil, fmt.Errorf("predict rpc: %w", err)
	}
	predicted, err := toTensor(v)
	if err != nil {
		return nil, fmt.Errorf("predict rpc: %w", err)
	}
	if len(predicted) != len(numTokens) {
		return nil, fmt.Errorf("predict rpc: %d predictions for %d sentences", len(predicted), len(numTokens))
	}
	return predicted, nil
}

func (r *Remote) TaskDiagonalWeights(ctx context.Context, t task.Task) ([]float64, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldTask: structpb.NewStringValue(t.Name),
	}}

	resp := new(structpb.Struct)
	if err := r.cc.Invoke(ctx, methodWeights, req, resp); err != nil {
		return nil, fmt.Errorf("task weights rpc: %w", err)
	}

	v, err := field(resp, fieldWeights)
	if err != nil {
		return nil, fmt.Errorf("task weights rpc: %w", err)
	}
	w, err := toVector(v)
	if err != nil {
		return nil, fmt.Errorf("task weights rpc: %w", err)
	}
	return w, nil
}
