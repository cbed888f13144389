package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// SendTurnProcedure is the Connect procedure path for a single turn. Its
// request carries "session_key" and "text"; its response "session_key" and
// "reply".
const SendTurnProcedure = "/querymind.v1.ChatService/SendTurn"

func newRPCHandler(turns Turns) (string, http.Handler) {
	sendTurn := func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
		fields := req.Msg.GetFields()
		key := fields["session_key"].GetStringValue()
		text := fields["text"].GetStringValue()

		if strings.TrimSpace(text) == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, ErrEmptyText)
		}

		reply, err := turns.Execute(ctx, key, text)
		if err != nil {
			return nil, connect.NewError(rpcCode(err), err)
		}

		out, err := structpb.NewStruct(map[string]any{
			"session_key": key,
			"reply":       reply,
		})
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewResponse(out), nil
	}

	return SendTurnProcedure, connect.NewUnaryHandler(SendTurnProcedure, sendTurn)
}

// RPCClient calls SendTurn on a remote server.
type RPCClient struct {
	client *connect.Client[structpb.Struct, structpb.Struct]
}

// NewRPCClient creates a client for the server at baseURL. The Connect JSON
// codec is used so the traffic is readable with curl.
func NewRPCClient(httpClient connect.HTTPClient, baseURL string) *RPCClient {
	return &RPCClient{
		client: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient,
			strings.TrimRight(baseURL, "/")+SendTurnProcedure,
			connect.WithProtoJSON(),
		),
	}
}

// SendTurn runs one turn remotely and returns the reply.
func (c *RPCClient) SendTurn(ctx context.Context, key, text string) (string, error) {
	msg, err := structpb.NewStruct(map[string]any{
		"session_key": key,
		"text":        text,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.client.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return "", err
	}

	reply, ok := resp.Msg.GetFields()["reply"]
	if !ok {
		return "", errors.New("rpc response missing reply")
	}
	return reply.GetStringValue(), nil
}
