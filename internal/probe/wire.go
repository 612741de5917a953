package probe

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "probe.v1.ProbeService"

	methodPredict = "/" + ServiceName + "/PredictOnBatch"
	methodWeights = "/" + ServiceName + "/GetTaskDiagonalWeights"
)

const (
	fieldNumTokens  = "num_tokens"
	fieldEmbeddings = "embeddings"
	fieldLanguage   = "language"
	fieldTask       = "task"
	fieldGate       = "gate"
	fieldPredicted  = "predicted"
	fieldWeights    = "weights"
)

func vectorValue(xs []float64) *structpb.Value {
	vals := make([]*structpb.Value, len(xs))
	for i, x := range xs {
		vals[i] = structpb.NewNumberValue(x)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

func matrixValue(xs [][]float64) *structpb.Value {
	vals := make([]*structpb.Value, len(xs))
	for i, row := range xs {
		vals[i] = vectorValue(row)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

func tensorValue(xs [][][]float64) *structpb.Value {
	vals := make([]*structpb.Value, len(xs))
	for i, m := range xs {
		vals[i] = matrixValue(m)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

func intsValue(xs []int) *structpb.Value {
	fs := make([]float64, len(xs))
	for i, x := range xs {
		fs[i] = float64(x)
	}
	return vectorValue(fs)
}

func listOf(v *structpb.Value) ([]*structpb.Value, error) {
	l := v.GetListValue()
	if l == nil {
		return nil, fmt.Errorf("expected list, got %T", v.GetKind())
	}
	return l.GetValues(), nil
}

func toVector(v *structpb.Value) ([]float64, error) {
	vals, err := listOf(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vals))
	for i, x := range vals {
		n, ok := x.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("element %d: expected number, got %T", i, x.GetKind())
		}
		out[i] = n.NumberValue
	}
	return out, nil
}

func toMatrix(v *structpb.Value) ([][]float64, error) {
	vals, err := listOf(v)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(vals))
	for i, x := range vals {
		if out[i], err = toVector(x); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return out, nil
}

func toTensor(v *structpb.Value) ([][][]float64, error) {
	vals, err := listOf(v)
	if err != nil {
		return nil, err
	}
	out := make([][][]float64, len(vals))
	for i, x := range vals {
		if out[i], err = toMatrix(x); err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
	}
	return out, nil
}

func toInts(v *structpb.Value) ([]int, error) {
	fs, err := toVector(v)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(fs))
	for i, f := range fs {
		out[i] = int(f)
	}
	return out, nil
}

func field(s *structpb.Struct, name string) (*structpb.Value, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return nil, fmt.Errorf("missing field %q", name)
	}
	return v, nil
}
