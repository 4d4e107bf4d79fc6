package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type socketReply struct {
	Type           string            `json:"type"`
	Route          string            `json:"route"`
	Title          string            `json:"title"`
	Params         map[string]string `json:"params"`
	Query          string            `json:"query"`
	RedirectedFrom string            `json:"redirectedFrom"`
	Replace        bool              `json:"replace"`
	Code           string            `json:"code"`
	Message        string            `json:"message"`
	Version        string            `json:"version"`
}

func dialSocket(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/_navigate"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func roundTrip(t *testing.T, ws *websocket.Conn, msg string) socketReply {
	t.Helper()
	if err := ws.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("write: %v", err)
	}
	return readReply(t, ws)
}

func readReply(t *testing.T, ws *websocket.Conn) socketReply {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var reply socketReply
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return reply
}

func TestSocketNavigate(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dialSocket(t, ts)

	reply := roundTrip(t, ws, `{"path":"/"}`)
	if reply.Type != messageNavigated || reply.Route != "Home" || reply.Title != "Home - Factura.com" {
		t.Errorf("reply = %+v", reply)
	}
	if reply.RedirectedFrom != "/" {
		t.Errorf("RedirectedFrom = %q, want /", reply.RedirectedFrom)
	}

	reply = roundTrip(t, ws, `{"name":"Show","params":{"uuid":"`+showUUID+`"},"replace":true,"query":{"tab":"pdf"}}`)
	if reply.Type != messageNavigated || reply.Route != "Show" || reply.Params["uuid"] != showUUID {
		t.Errorf("reply = %+v", reply)
	}
	if !reply.Replace || reply.Query != "tab=pdf" {
		t.Errorf("replace=%v query=%q", reply.Replace, reply.Query)
	}

	reply = roundTrip(t, ws, `{"path":"/create"}`)
	if reply.Title != "Factura.com" {
		t.Errorf("Title = %q, want default", reply.Title)
	}
}

func TestSocketErrors(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dialSocket(t, ts)

	tests := []struct {
		msg  string
		code string
	}{
		{`{"path":"/nowhere"}`, "E200"},
		{`{"name":"Missing"}`, "E202"},
		{`{"name":"Show"}`, "E204"},
		{`{}`, "E203"},
		{`not json`, "E203"},
	}
	for _, tt := range tests {
		reply := roundTrip(t, ws, tt.msg)
		if reply.Type != messageError || reply.Code != tt.code {
			t.Errorf("%s: reply = %+v, want error %s", tt.msg, reply, tt.code)
		}
	}

	// The connection stays usable after errors.
	if reply := roundTrip(t, ws, `{"path":"/home"}`); reply.Type != messageNavigated {
		t.Errorf("reply after errors = %+v", reply)
	}
}

func TestSocketReloadBroadcast(t *testing.T) {
	srv, ts := newTestServer(t)
	ws := dialSocket(t, ts)

	// A round trip guarantees the connection is registered.
	roundTrip(t, ws, `{"path":"/home"}`)
	if n := srv.SocketCount(); n != 1 {
		t.Fatalf("SocketCount() = %d, want 1", n)
	}

	srv.NotifyReload(facturaTable(t))
	reply := readReply(t, ws)
	if reply.Type != messageReloaded || reply.Version != "4" {
		t.Errorf("reply = %+v", reply)
	}

	ws.Close()
	deadline := time.Now().Add(2 * time.Second)
	for srv.SocketCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("socket was not removed after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
