package remote

// Hand-authored in the legacy protoc-gen-go v1 message shape (struct tags +
// Reset/String/ProtoMessage), matching pw_remote.proto. google.golang.org/protobuf's
// legacy-message support loads these via their `protobuf` struct tags, so they
// interoperate with grpc-go's default codec without the v2 reflection
// machinery a `protoc --go_out` run would otherwise generate.

import (
	fmt "fmt"

	proto "github.com/golang/protobuf/proto"
)

type CreateMatchRequest struct {
	OpponentName string `protobuf:"bytes,1,opt,name=opponent_name,json=opponentName,proto3" json:"opponent_name,omitempty"`
	MapName      string `protobuf:"bytes,2,opt,name=map_name,json=mapName,proto3" json:"map_name,omitempty"`
}

func (m *CreateMatchRequest) Reset()         { *m = CreateMatchRequest{} }
func (m *CreateMatchRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*CreateMatchRequest) ProtoMessage()    {}

type CreateMatchResponse struct {
	MatchId   string `protobuf:"bytes,1,opt,name=match_id,json=matchId,proto3" json:"match_id,omitempty"`
	PlayerKey string `protobuf:"bytes,2,opt,name=player_key,json=playerKey,proto3" json:"player_key,omitempty"`
	MatchUrl  string `protobuf:"bytes,3,opt,name=match_url,json=matchUrl,proto3" json:"match_url,omitempty"`
}

func (m *CreateMatchResponse) Reset()         { *m = CreateMatchResponse{} }
func (m *CreateMatchResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (*CreateMatchResponse) ProtoMessage()    {}

type ActionRequest struct {
	ActionRequestId int32  `protobuf:"varint,1,opt,name=action_request_id,json=actionRequestId,proto3" json:"action_request_id,omitempty"`
	Content         []byte `protobuf:"bytes,2,opt,name=content,proto3" json:"content,omitempty"`
}

func (m *ActionRequest) Reset()         { *m = ActionRequest{} }
func (m *ActionRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (*ActionRequest) ProtoMessage()    {}

type ServerMessage struct {
	ActionRequest *ActionRequest `protobuf:"bytes,1,opt,name=action_request,json=actionRequest,proto3" json:"action_request,omitempty"`
}

func (m *ServerMessage) Reset()         { *m = ServerMessage{} }
func (m *ServerMessage) String() string { return fmt.Sprintf("%+v", *m) }
func (*ServerMessage) ProtoMessage()    {}

type ClientAction struct {
	ActionRequestId int32  `protobuf:"varint,1,opt,name=action_request_id,json=actionRequestId,proto3" json:"action_request_id,omitempty"`
	Content         []byte `protobuf:"bytes,2,opt,name=content,proto3" json:"content,omitempty"`
}

func (m *ClientAction) Reset()         { *m = ClientAction{} }
func (m *ClientAction) String() string { return fmt.Sprintf("%+v", *m) }
func (*ClientAction) ProtoMessage()    {}

type ClientMessage struct {
	Action *ClientAction `protobuf:"bytes,1,opt,name=action,proto3" json:"action,omitempty"`
}

func (m *ClientMessage) Reset()         { *m = ClientMessage{} }
func (m *ClientMessage) String() string { return fmt.Sprintf("%+v", *m) }
func (*ClientMessage) ProtoMessage()    {}

var _ proto.Message = (*CreateMatchRequest)(nil)
