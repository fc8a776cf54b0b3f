// Package feed serves the streaming parser over a websocket: each text
// message is one chunk of markup and an empty message ends the document.
package feed

import (
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/heathj/htmlstream/parser"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{}

// Diagnostic is a parse error as sent to the client.
type Diagnostic struct {
	Code   string   `json:"code"`
	Line   int      `json:"line"`
	Column int      `json:"column"`
	Args   []string `json:"args,omitempty"`
}

// Reply is the message sent once the document is complete.
type Reply struct {
	Tree   string       `json:"tree"`
	Errors []Diagnostic `json:"errors"`
}

// Handler is an http.Handler that upgrades to a websocket and parses the
// chunks it receives.
type Handler struct {
	// Fragment is the context element for fragment parsing. Empty means a
	// whole document.
	Fragment  string
	Scripting bool
	// Logger receives connection lifecycle logs. Nothing is logged when it
	// is nil.
	Logger logrus.FieldLogger

	init   sync.Once
	logger logrus.FieldLogger
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		if h.Logger != nil {
			h.logger = h.Logger
			return
		}
		l := logrus.New()
		l.SetOutput(io.Discard)
		h.logger = l
	})

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("upgrade websocket")
		return
	}
	defer ws.Close()

	log := h.logger.WithField("remote", r.RemoteAddr)
	log.Info("feed opened")
	if err := h.serve(ws); err != nil {
		log.WithError(err).Warn("feed failed")
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		if err := ws.WriteMessage(websocket.CloseMessage, msg); err != nil {
			log.WithError(err).Warn("write close frame")
		}
		return
	}
	log.Info("feed closed")
}

func (h *Handler) newParser() (*parser.StreamParser, error) {
	opts := []parser.ParseOption{parser.WithScripting(h.Scripting), parser.WithLogger(h.logger)}
	if h.Fragment != "" {
		return parser.NewFragmentStreamParser(h.Fragment, opts...)
	}
	return parser.NewStreamParser(opts...), nil
}

func (h *Handler) serve(ws *websocket.Conn) error {
	p, err := h.newParser()
	if err != nil {
		return err
	}

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				// The client went away before finishing the document.
				_, err = p.Close()
				return err
			}
			return errors.Wrap(err, "read websocket message")
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		if len(data) == 0 {
			break
		}
		if _, err := p.Write(data); err != nil {
			return err
		}
	}

	res, err := p.Close()
	if err != nil {
		return err
	}
	if err := ws.WriteJSON(newReply(res)); err != nil {
		return errors.Wrap(err, "write reply")
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return errors.Wrap(ws.WriteMessage(websocket.CloseMessage, msg), "write close")
}

func newReply(res *parser.Result) Reply {
	reply := Reply{Tree: res.Document.String(), Errors: []Diagnostic{}}
	for _, e := range res.Errors {
		reply.Errors = append(reply.Errors, Diagnostic{
			Code:   string(e.Code),
			Line:   e.Line,
			Column: e.Column,
			Args:   e.Args,
		})
	}
	return reply
}

// Send is the client side of the feed: it writes chunks to the connection,
// ends the document and waits for the reply.
func Send(ws *websocket.Conn, chunks ...string) (*Reply, error) {
	for _, c := range chunks {
		if c == "" {
			continue
		}
		if err := ws.WriteMessage(websocket.TextMessage, []byte(c)); err != nil {
			return nil, errors.Wrap(err, "write chunk")
		}
	}
	if err := ws.WriteMessage(websocket.TextMessage, nil); err != nil {
		return nil, errors.Wrap(err, "write end of document")
	}
	var reply Reply
	if err := ws.ReadJSON(&reply); err != nil {
		return nil, errors.Wrap(err, "read reply")
	}
	return &reply, nil
}

// Chunk splits s into pieces of at most n bytes.
func Chunk(s string, n int) []string {
	if n <= 0 {
		return []string{s}
	}
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}
