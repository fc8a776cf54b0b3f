package feed

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/heathj/htmlstream/parser"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestFeedDocument(t *testing.T) {
	t.Parallel()
	const doc = "<!DOCTYPE html><title>feed</title><table>x<tr><td>y</table>"
	want, err := parser.Parse(doc)
	require.NoError(t, err)

	for _, n := range []int{1, 3, 7, len(doc)} {
		ws := dial(t, &Handler{})
		reply, err := Send(ws, Chunk(doc, n)...)
		require.NoError(t, err)
		assert.Equal(t, want.Document.String(), reply.Tree, "chunk size %d", n)
		require.Len(t, reply.Errors, len(want.Errors))
		for i, e := range want.Errors {
			assert.Equal(t, string(e.Code), reply.Errors[i].Code)
		}

		// The server closes the connection after the reply.
		_, _, err = ws.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
	}
}

func TestFeedFragment(t *testing.T) {
	t.Parallel()
	ws := dial(t, &Handler{Fragment: "tr"})
	reply, err := Send(ws, "<td>", "a")
	require.NoError(t, err)
	assert.Equal(t, "| <td>\n|   \"a\"", reply.Tree)
	assert.NotNil(t, reply.Errors)
}

func TestFeedEmptyDocument(t *testing.T) {
	t.Parallel()
	ws := dial(t, &Handler{})
	reply, err := Send(ws)
	require.NoError(t, err)
	assert.Equal(t, "| <html>\n|   <head>\n|   <body>", reply.Tree)
	require.Len(t, reply.Errors, 1)
	assert.Equal(t, "missing-doctype", reply.Errors[0].Code)
}

func TestFeedUnknownContext(t *testing.T) {
	t.Parallel()
	logger, hook := test.NewNullLogger()
	ws := dial(t, &Handler{Fragment: "nosuch", Logger: logger})
	// The context is rejected before any chunk is read.
	_, _, err := ws.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "%v", err)

	// The close frame reached the client, so only the failure is logged.
	var warned, closeFailed bool
	for _, e := range hook.AllEntries() {
		if e.Level != logrus.WarnLevel {
			continue
		}
		switch e.Message {
		case "feed failed":
			warned = true
		case "write close frame":
			closeFailed = true
		}
	}
	assert.True(t, warned)
	assert.False(t, closeFailed)
}

func TestChunk(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"ab", "cd", "e"}, Chunk("abcde", 2))
	assert.Equal(t, []string{"abc"}, Chunk("abc", 0))
	assert.Equal(t, []string{"abc"}, Chunk("abc", 3))
	assert.Empty(t, Chunk("", 2))
}
