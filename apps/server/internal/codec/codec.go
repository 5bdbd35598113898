package codec

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"phase10-tracker/apps/server/internal/tracker"
	"phase10-tracker/phase10"
)

// Frame types carried in the envelope "type" field.
const (
	FrameState = "state"
	FrameError = "error"
)

// ViewToProto converts a tracker view to the Struct pushed to viewers.
func ViewToProto(v tracker.View) *structpb.Struct {
	players := make([]*structpb.Value, 0, len(v.Players))
	for _, p := range v.Players {
		players = append(players, structpb.NewStructValue(playerToProto(p)))
	}

	rankings := make([]*structpb.Value, 0, len(v.Rankings))
	for _, s := range v.Rankings {
		rankings = append(rankings, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"rank":   structpb.NewNumberValue(float64(s.Rank)),
			"name":   structpb.NewStringValue(s.Player.Name),
			"medal":  structpb.NewStringValue(string(s.Medal)),
			"leader": structpb.NewBoolValue(s.Leader),
			"last":   structpb.NewBoolValue(s.Last),
		}}))
	}

	reqs := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(v.PhaseRequirements))}
	for name, text := range v.PhaseRequirements {
		reqs.Fields[name] = structpb.NewStringValue(text)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"version":           structpb.NewNumberValue(float64(v.Version)),
		"players":           structpb.NewListValue(&structpb.ListValue{Values: players}),
		"dealerIndex":       structpb.NewNumberValue(float64(v.DealerIndex)),
		"dealer":            structpb.NewStringValue(v.Dealer),
		"nextDealer":        structpb.NewStringValue(v.NextDealer),
		"winner":            winnerToProto(v.Winner),
		"winnerNames":       stringList(v.WinnerNames),
		"tie":               structpb.NewBoolValue(v.Winner.IsTie()),
		"tieBreakerActive":  structpb.NewBoolValue(v.TieBreakerActive),
		"leaders":           stringList(v.Leaders),
		"rankings":          structpb.NewListValue(&structpb.ListValue{Values: rankings}),
		"canUndo":           structpb.NewBoolValue(v.CanUndo),
		"phaseRequirements": structpb.NewStructValue(reqs),
	}}
}

// WrapServerEnvelope adds the frame header around a payload.
func WrapServerEnvelope(frameType string, serverSeq uint64, payload *structpb.Struct) *structpb.Struct {
	if payload == nil {
		payload = &structpb.Struct{}
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"type":       structpb.NewStringValue(frameType),
		"serverSeq":  structpb.NewNumberValue(float64(serverSeq)),
		"serverTsMs": structpb.NewNumberValue(float64(time.Now().UnixMilli())),
		"payload":    structpb.NewStructValue(payload),
	}}
}

// ErrorToProto builds the payload of an error frame.
func ErrorToProto(msg string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"message": structpb.NewStringValue(msg),
	}}
}

// EncodeState marshals a full state frame for v.
func EncodeState(v tracker.View) ([]byte, error) {
	return Encode(WrapServerEnvelope(FrameState, v.Version, ViewToProto(v)))
}

func Encode(env *structpb.Struct) ([]byte, error) {
	data, err := proto.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

// Decode parses a frame back into plain Go values, as a viewer would.
func Decode(data []byte) (map[string]any, error) {
	var env structpb.Struct
	if err := proto.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return env.AsMap(), nil
}

// Helper conversion functions

func playerToProto(p phase10.Player) *structpb.Struct {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":  structpb.NewStringValue(p.Name),
		"score": structpb.NewNumberValue(float64(p.Score)),
		"phase": structpb.NewNumberValue(float64(p.Phase)),
	}}
	if p.LastPhasePlayed != nil {
		s.Fields["lastPhasePlayed"] = structpb.NewNumberValue(float64(*p.LastPhasePlayed))
	}
	if p.LastPassedPhase != nil {
		s.Fields["lastPassedPhase"] = structpb.NewBoolValue(*p.LastPassedPhase)
	}
	return s
}

// winnerToProto mirrors the save format: null, a player, or tied names.
func winnerToProto(w *phase10.Winner) *structpb.Value {
	switch {
	case w == nil:
		return structpb.NewNullValue()
	case w.Player != nil:
		return structpb.NewStructValue(playerToProto(*w.Player))
	default:
		return stringList(w.Tied)
	}
}

func stringList(items []string) *structpb.Value {
	values := make([]*structpb.Value, len(items))
	for i, s := range items {
		values[i] = structpb.NewStringValue(s)
	}
	return structpb.NewListValue(&structpb.ListValue{Values: values})
}
