package trpc

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"

	"helloworld/utils"
)

const metaLocalsKey = "trpc_meta"

type socketParams struct {
	Path  string          `json:"path"`
	Input json.RawMessage `json:"input"`
}

type socketRequest struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method"`
	Params  socketParams    `json:"params"`
}

type socketResult struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type socketResponse struct {
	ID      json.RawMessage `json:"id"`
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Result  *socketResult   `json:"result,omitempty"`
	Error   *errorShape     `json:"error,omitempty"`
}

// serveSocket runs one WebSocket session. Calls on a connection are handled in order.
func (a *adapter) serveSocket(conn *websocket.Conn) {
	defer conn.Close()

	meta, _ := conn.Locals(metaLocalsKey).(Meta)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		messageType, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.LogError("TRPC_WS_READ", err, "request_id", meta.RequestID)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		reply := a.handleSocketMessage(ctx, msg, meta)
		if reply == nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			utils.LogError("TRPC_WS_WRITE", err, "request_id", meta.RequestID)
			return
		}
	}
}

// handleSocketMessage answers a single message or a batch (JSON array) of messages.
// It returns nil when nothing needs to be sent back.
func (a *adapter) handleSocketMessage(ctx context.Context, msg []byte, meta Meta) []byte {
	trimmed := bytes.TrimSpace(msg)

	var requests []socketRequest
	batched := len(trimmed) > 0 && trimmed[0] == '['
	var err error
	if batched {
		err = json.Unmarshal(trimmed, &requests)
	} else {
		var single socketRequest
		err = json.Unmarshal(trimmed, &single)
		requests = []socketRequest{single}
	}
	if err != nil {
		parseErr := WrapError(ParseError, err, "Unable to parse message as JSON")
		out, _ := json.Marshal(socketResponse{ID: json.RawMessage("null"), Error: a.shape("", parseErr)})
		return out
	}

	responses := make([]socketResponse, 0, len(requests))
	for _, req := range requests {
		if resp, ok := a.answerSocket(ctx, req, meta); ok {
			responses = append(responses, resp)
		}
	}
	if len(responses) == 0 {
		return nil
	}

	var out []byte
	if batched {
		out, err = json.Marshal(responses)
	} else {
		out, err = json.Marshal(responses[0])
	}
	if err != nil {
		utils.LogError("TRPC_WS_ENCODE", err, "request_id", meta.RequestID)
		return nil
	}
	return out
}

func (a *adapter) answerSocket(ctx context.Context, msg socketRequest, meta Meta) (socketResponse, bool) {
	id := msg.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	resp := socketResponse{ID: id, JSONRPC: msg.JSONRPC}

	var procType ProcedureType
	switch msg.Method {
	case string(Query):
		procType = Query
	case string(Mutation):
		procType = Mutation
	case "subscription.stop":
		return resp, false
	default:
		rpcErr := Errorf(MethodNotSupported, "Unsupported socket method %q", msg.Method)
		resp.Error = a.shape(msg.Params.Path, rpcErr)
		return resp, true
	}

	req := Request{Path: msg.Params.Path, Type: procType, Input: msg.Params.Input, Meta: meta}
	data, rpcErr := a.call(ctx, req)
	if rpcErr != nil {
		a.opts.OnError(req, rpcErr)
		resp.Error = a.shape(req.Path, rpcErr)
		return resp, true
	}
	resp.Result = &socketResult{Type: "data", Data: data}
	return resp, true
}
