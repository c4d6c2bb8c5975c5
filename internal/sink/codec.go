package sink

import (
	"fmt"

	"Go2NetWatch/internal/anomaly"
	"Go2NetWatch/internal/model"

	jsoniter "github.com/json-iterator/go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// scoreField carries the anomaly score next to the snapshot fields on the wire.
const scoreField = "anomaly_score"

// EncodeSnapshot serializes a snapshot and its score as a protobuf Struct.
func EncodeSnapshot(s model.MetricsSnapshot) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten snapshot: %w", err)
	}
	fields[scoreField] = anomaly.Score(s)

	pb, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to convert snapshot to protobuf: %w", err)
	}
	return proto.Marshal(pb)
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(data []byte) (model.MetricsSnapshot, float64, error) {
	var pb structpb.Struct
	if err := proto.Unmarshal(data, &pb); err != nil {
		return model.MetricsSnapshot{}, 0, fmt.Errorf("failed to unmarshal protobuf: %w", err)
	}
	fields := pb.AsMap()
	score, _ := fields[scoreField].(float64)
	delete(fields, scoreField)

	raw, err := json.Marshal(fields)
	if err != nil {
		return model.MetricsSnapshot{}, 0, fmt.Errorf("failed to marshal snapshot fields: %w", err)
	}
	var s model.MetricsSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.MetricsSnapshot{}, 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, score, nil
}
