package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	h, _ := newTestHandler(t)
	return &Server{handler: h}
}

// serve runs one session over in-memory pipes and returns the response
// lines in order.
func serve(t *testing.T, s *Server, input string) []json.RawMessage {
	t.Helper()
	var out bytes.Buffer
	if err := s.RunConn(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("RunConn: %v", err)
	}

	var responses []json.RawMessage
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		responses = append(responses, json.RawMessage(line))
	}
	return responses
}

func TestServerSession(t *testing.T) {
	s := newTestServer(t)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"orchestrator","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`,
	}, "\n") + "\n"

	responses := serve(t, s, input)
	if len(responses) != 3 {
		t.Fatalf("responses = %d, want 3 (the notification gets none)", len(responses))
	}

	var init Response
	if err := json.Unmarshal(responses[0], &init); err != nil {
		t.Fatalf("initialize response: %v", err)
	}
	if init.JSONRPC != "2.0" || init.Error != nil {
		t.Errorf("initialize response = %+v", init)
	}
	var initResult InitializeResult
	if err := json.Unmarshal(init.Result, &initResult); err != nil {
		t.Fatalf("initialize result: %v", err)
	}
	if initResult.ServerInfo.Name != "boardman" {
		t.Errorf("serverInfo.name = %q", initResult.ServerInfo.Name)
	}

	var ping Response
	if err := json.Unmarshal(responses[1], &ping); err != nil {
		t.Fatalf("ping response: %v", err)
	}
	if string(ping.Result) != "{}" {
		t.Errorf("ping result = %s", ping.Result)
	}

	var list Response
	if err := json.Unmarshal(responses[2], &list); err != nil {
		t.Fatalf("tools/list response: %v", err)
	}
	var parsed struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(list.Result, &parsed); err != nil {
		t.Fatalf("tools/list result: %v", err)
	}
	if len(parsed.Tools) == 0 {
		t.Error("tools/list returned no tools")
	}
}

func TestServerEchoesRequestID(t *testing.T) {
	s := newTestServer(t)

	responses := serve(t, s, `{"jsonrpc":"2.0","id":"abc-123","method":"ping"}`+"\n")
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(responses))
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(responses[0], &resp); err != nil {
		t.Fatalf("response: %v", err)
	}
	if resp.ID != "abc-123" {
		t.Errorf("id = %q, want the request's id echoed back", resp.ID)
	}
}

func TestServerParseError(t *testing.T) {
	s := newTestServer(t)

	responses := serve(t, s, "{not json\n")
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(responses))
	}

	var resp Response
	if err := json.Unmarshal(responses[0], &resp); err != nil {
		t.Fatalf("response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Errorf("error = %+v, want parse error", resp.Error)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	s := newTestServer(t)

	responses := serve(t, s, `{"jsonrpc":"2.0","id":9,"method":"resources/list"}`+"\n")
	var resp Response
	if err := json.Unmarshal(responses[0], &resp); err != nil {
		t.Fatalf("response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error = %+v, want method not found", resp.Error)
	}
}

func TestServerSkipsBlankLines(t *testing.T) {
	s := newTestServer(t)

	responses := serve(t, s, "\n\n"+`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n\n")
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(responses))
	}
}

func TestServerToolCallRoundTrip(t *testing.T) {
	s := newTestServer(t)

	input := `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"boardman_cache_stats","arguments":{}}}` + "\n"
	responses := serve(t, s, input)

	var resp Response
	if err := json.Unmarshal(responses[0], &resp); err != nil {
		t.Fatalf("response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error: %+v", resp.Error)
	}

	var result CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("result: %v", err)
	}
	if result.IsError {
		t.Errorf("tool result = %+v", result)
	}
	if !strings.Contains(result.Content[0].Text, "entries") {
		t.Errorf("text = %s", result.Content[0].Text)
	}
}
