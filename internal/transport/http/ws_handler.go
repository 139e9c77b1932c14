package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"dutch-verb-trainer/internal/app"
	"dutch-verb-trainer/internal/domain"
	"github.com/gorilla/websocket"
)

// ServiceFactory returns the quiz service bound to one client's session slot.
type ServiceFactory func(clientID string) *app.QuizService

type WSHandler struct {
	services  ServiceFactory
	questions int
	selection domain.Selection
	upgrader  websocket.Upgrader
}

// NewWSHandler serves drills over websockets. questions and selection are
// used when a start message leaves them out.
func NewWSHandler(services ServiceFactory, questions int, selection domain.Selection) *WSHandler {
	return &WSHandler{
		services:  services,
		questions: questions,
		selection: selection,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Count   int      `json:"count"`
	Tenses  []string `json:"tenses"`
	Persons []string `json:"persons"`
}

type cellPayload struct {
	Tense  string `json:"tense"`
	Person string `json:"person"`
	Value  string `json:"value"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type stateView struct {
	State      string            `json:"state"`
	Infinitive string            `json:"infinitive,omitempty"`
	Progress   app.Progress      `json:"progress"`
	Tenses     []domain.Tense    `json:"tenses,omitempty"`
	Persons    []domain.Person   `json:"persons,omitempty"`
	Answers    domain.TenseForms `json:"answers"`
	HasSession bool              `json:"hasSession"`
}

type checkedView struct {
	Result app.CheckResult `json:"result"`
	State  stateView       `json:"state"`
}

var errNoDrill = errors.New("no active session; send start or resume")

// ServeWS upgrades HTTP requests to websockets and drives one drill per connection.
// Messages are handled in order on the connection's goroutine.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		http.Error(w, "missing clientId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	service := h.services(clientID)
	c := &connection{conn: conn, service: service}

	hasSession, err := service.HasSession(ctx)
	if err != nil {
		log.Printf("ws load session for %q: %v", clientID, err)
	}
	if !c.send("hello", stateView{State: "idle", HasSession: hasSession}) {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !h.dispatch(ctx, c, inbound) {
			return
		}
	}
}

type connection struct {
	conn    *websocket.Conn
	service *app.QuizService
	drill   *app.Drill
}

func (c *connection) send(typ string, payload any) bool {
	if err := c.conn.WriteJSON(outboundMessage[any]{Type: typ, Payload: payload}); err != nil {
		log.Printf("ws write error: %v", err)
		return false
	}
	return true
}

func (c *connection) fail(err error) bool {
	return c.send("error", errorPayload{Message: err.Error()})
}

func (h *WSHandler) dispatch(ctx context.Context, c *connection, inbound inboundMessage) bool {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return c.send("error", errorPayload{Message: "invalid start payload"})
			}
		}
		sel, err := h.parseSelection(payload)
		if err != nil {
			return c.fail(err)
		}
		count := payload.Count
		if count == 0 {
			count = h.questions
		}
		drill, err := c.service.Start(ctx, count, sel)
		if err != nil {
			return c.fail(err)
		}
		c.drill = drill
		return c.send("state", viewOf(c.drill))

	case "resume":
		drill, err := c.service.Resume(ctx)
		if err != nil {
			return c.fail(err)
		}
		c.drill = drill
		return c.send("state", viewOf(c.drill))

	case "reset":
		if err := c.service.Reset(ctx); err != nil {
			return c.fail(err)
		}
		c.drill = nil
		return c.send("reset", stateView{State: "idle"})
	}

	if c.drill == nil {
		return c.fail(errNoDrill)
	}

	switch inbound.Type {
	case "answer":
		var payload cellPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return c.send("error", errorPayload{Message: "invalid answer payload"})
		}
		tense, person, err := parseCell(payload)
		if err != nil {
			return c.fail(err)
		}
		if err := c.drill.SetAnswer(ctx, tense, person, payload.Value); err != nil {
			return c.fail(err)
		}
		return c.send("state", viewOf(c.drill))

	case "check":
		result, err := c.drill.Check(ctx)
		if err != nil {
			return c.fail(err)
		}
		return c.send("checked", checkedView{Result: result, State: viewOf(c.drill)})

	case "submit":
		var payload cellPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return c.send("error", errorPayload{Message: "invalid submit payload"})
		}
		tense, person, err := parseCell(payload)
		if err != nil {
			return c.fail(err)
		}
		result, checked, err := c.drill.Submit(ctx, tense, person)
		if err != nil {
			return c.fail(err)
		}
		if checked {
			return c.send("checked", checkedView{Result: result, State: viewOf(c.drill)})
		}
		return c.send("state", viewOf(c.drill))

	case "reveal":
		result, err := c.drill.Reveal(ctx)
		if err != nil {
			return c.fail(err)
		}
		return c.send("reveal", result)

	case "advance":
		state, err := c.drill.Advance(ctx)
		if err != nil {
			return c.fail(err)
		}
		if state != app.Finished {
			return c.send("state", viewOf(c.drill))
		}
		result, err := c.drill.Result()
		if err != nil {
			return c.fail(err)
		}
		return c.send("finished", result)
	}

	return c.send("error", errorPayload{Message: "unsupported message type"})
}

func (h *WSHandler) parseSelection(payload startPayload) (domain.Selection, error) {
	if payload.Tenses == nil && payload.Persons == nil {
		return h.selection, nil
	}
	tenses := make([]domain.Tense, 0, len(payload.Tenses))
	for _, raw := range payload.Tenses {
		t, err := domain.ParseTense(raw)
		if err != nil {
			return domain.Selection{}, err
		}
		tenses = append(tenses, t)
	}
	persons := make([]domain.Person, 0, len(payload.Persons))
	for _, raw := range payload.Persons {
		p, err := domain.ParsePerson(raw)
		if err != nil {
			return domain.Selection{}, err
		}
		persons = append(persons, p)
	}
	return domain.NewSelection(tenses, persons)
}

func parseCell(payload cellPayload) (domain.Tense, domain.Person, error) {
	tense, err := domain.ParseTense(payload.Tense)
	if err != nil {
		return "", "", err
	}
	person, err := domain.ParsePerson(payload.Person)
	if err != nil {
		return "", "", err
	}
	return tense, person, nil
}

func viewOf(d *app.Drill) stateView {
	session := d.Session()
	view := stateView{
		State:      d.State().String(),
		Progress:   d.Progress(),
		Tenses:     session.SelectedTenses,
		Persons:    session.SelectedPersons,
		HasSession: true,
	}
	if inf, err := session.CurrentInfinitive(); err == nil {
		view.Infinitive = inf
		view.Answers = session.Answers[inf]
	}
	return view
}
