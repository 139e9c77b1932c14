package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dutch-verb-trainer/internal/app"
	"dutch-verb-trainer/internal/domain"
	"dutch-verb-trainer/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func TestWebSocketDrillFlow(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	conn := dial(t, server, "c1")
	defer conn.Close()

	// Expect hello first, with no stored session.
	_, payload := readNext(conn, t, "hello")
	if payload["hasSession"] != false {
		t.Fatalf("expected no session, got %v", payload)
	}

	send(t, conn, "start", map[string]any{"count": 1, "tenses": []string{"present"}, "persons": []string{"ik"}})
	_, payload = readNext(conn, t, "state")
	if payload["infinitive"] != "lopen" || payload["state"] != "answering" {
		t.Fatalf("unexpected state after start: %v", payload)
	}

	send(t, conn, "answer", map[string]any{"tense": "present", "person": "ik", "value": "Loop "})
	readNext(conn, t, "state")

	send(t, conn, "submit", map[string]any{"tense": "present", "person": "ik"})
	_, payload = readNext(conn, t, "checked")
	result := payload["result"].(map[string]any)
	if result["mistakes"].(float64) != 0 {
		t.Fatalf("expected no mistakes, got %v", result)
	}

	send(t, conn, "advance", nil)
	_, payload = readNext(conn, t, "finished")
	if payload["accuracy"].(float64) != 100 || payload["perfect"] != true {
		t.Fatalf("unexpected result %v", payload)
	}
}

func TestWebSocketResumeAcrossConnections(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	first := dial(t, server, "c2")
	readNext(first, t, "hello")
	send(t, first, "start", map[string]any{"count": 1, "tenses": []string{"present"}, "persons": []string{"ik"}})
	readNext(first, t, "state")
	send(t, first, "answer", map[string]any{"tense": "present", "person": "ik", "value": "lopen"})
	readNext(first, t, "state")
	first.Close()

	second := dial(t, server, "c2")
	defer second.Close()
	_, payload := readNext(second, t, "hello")
	if payload["hasSession"] != true {
		t.Fatalf("expected stored session, got %v", payload)
	}
	send(t, second, "resume", nil)
	_, payload = readNext(second, t, "state")
	answers := payload["answers"].(map[string]any)["present"].(map[string]any)
	if answers["ik"] != "lopen" {
		t.Fatalf("expected resumed answer, got %v", answers)
	}

	send(t, second, "check", nil)
	_, payload = readNext(second, t, "checked")
	if payload["result"].(map[string]any)["mistakes"].(float64) != 1 {
		t.Fatalf("expected one mistake, got %v", payload)
	}
	send(t, second, "reveal", nil)
	_, payload = readNext(second, t, "reveal")
	cell := payload["cells"].([]any)[0].(map[string]any)
	if cell["expected"] != "loop" {
		t.Fatalf("expected reveal of loop, got %v", cell)
	}
}

func TestWebSocketRejectsActionsWithoutDrill(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	conn := dial(t, server, "c3")
	defer conn.Close()
	readNext(conn, t, "hello")

	send(t, conn, "check", nil)
	readNext(conn, t, "error")

	send(t, conn, "start", map[string]any{"tenses": []string{}, "persons": []string{"ik"}})
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrEmptyTenses.Error() {
		t.Fatalf("expected empty tenses error, got %v", payload)
	}
}

func TestServeWSRequiresClientID(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func newTestServer() *httptest.Server {
	kv := memory.NewKVStore()
	catalogue := memory.NewCatalogue(memory.NewStaticVerbLoader(sampleVerbs()), time.Minute)
	factory := func(clientID string) *app.QuizService {
		store := app.NewSessionStore(kv, app.DefaultSessionKey+":"+clientID)
		return app.NewQuizService(store, catalogue, app.NewRandomPickerWithSeed(1))
	}
	wsHandler := NewWSHandler(factory, 10, domain.FullSelection())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server, clientID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?clientId=" + clientID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func sampleVerbs() map[string]domain.Verb {
	return map[string]domain.Verb{
		"lopen": {
			Infinitive: "lopen",
			Forms: domain.TenseForms{
				Present: domain.VerbForms{Ik: "loop", Jij: "loopt", HijZij: "loopt", Wij: "lopen"},
				Past:    domain.VerbForms{Ik: "liep", Jij: "liep", HijZij: "liep", Wij: "liepen"},
			},
		},
	}
}
