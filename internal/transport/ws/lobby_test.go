package ws_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/codingworldcup/internal/codec"
	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/testutil"
	"github.com/mcoot/codingworldcup/internal/transport/ws"
)

type received struct {
	agentID model.AgentID
	payload []byte
}

type LobbySuite struct {
	suite.Suite
	lobby  *ws.Lobby
	server *httptest.Server
}

func TestLobbySuite(t *testing.T) {
	suite.Run(t, new(LobbySuite))
}

func (s *LobbySuite) SetupTest() {
	s.start(codec.JSON{})
}

func (s *LobbySuite) TearDownTest() {
	s.lobby.Reset()
	s.server.Close()
}

func (s *LobbySuite) start(c codec.Codec) {
	s.lobby = ws.NewLobby(c, testutil.NopLogger())
	router := mux.NewRouter()
	router.Handle("/agents/{slot}", s.lobby)
	s.server = httptest.NewServer(router)
}

func (s *LobbySuite) dial(slot string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/agents/" + slot
	return websocket.DefaultDialer.Dial(url, nil)
}

func (s *LobbySuite) mustDial(slot string) *websocket.Conn {
	conn, _, err := s.dial(slot)
	s.Require().NoError(err)
	s.T().Cleanup(func() { conn.Close() })
	return conn
}

func (s *LobbySuite) await() []*ws.Agent {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	agents, err := s.lobby.Await(ctx)
	s.Require().NoError(err)
	return agents
}

func (s *LobbySuite) TestAwaitReturnsBothAgentsInTeamOrder() {
	s.mustDial("team2")
	s.mustDial("team1")

	agents := s.await()

	s.Require().Len(agents, 2)
	s.Equal(model.AgentTeam1, agents[0].ID())
	s.Equal(model.AgentTeam2, agents[1].ID())
	s.Len(ws.TurnAgents(agents), 2)
}

func (s *LobbySuite) TestAwaitHonoursContext() {
	s.mustDial("team1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.lobby.Await(ctx)

	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *LobbySuite) TestRejectsTakenSlot() {
	s.mustDial("team1")

	_, resp, err := s.dial("team1")

	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *LobbySuite) TestRejectsUnknownSlot() {
	_, resp, err := s.dial("team3")

	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *LobbySuite) TestDisconnectBeforeMatchFreesSlot() {
	conn := s.mustDial("team1")
	s.Eventually(func() bool { return s.lobby.Connected(model.AgentTeam1) }, time.Second, 5*time.Millisecond)

	conn.Close()
	s.Eventually(func() bool { return !s.lobby.Connected(model.AgentTeam1) }, time.Second, 5*time.Millisecond)

	s.mustDial("team1")
	s.mustDial("team2")
	s.Len(s.await(), 2)
}

func (s *LobbySuite) TestSendWritesTextFramesForJSON() {
	client := s.mustDial("team1")
	s.mustDial("team2")
	agents := s.await()

	s.Require().NoError(agents[0].Send([]byte(`{"request":"PLAY"}`)))

	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	messageType, data, err := client.ReadMessage()
	s.Require().NoError(err)
	s.Equal(websocket.TextMessage, messageType)
	s.JSONEq(`{"request":"PLAY"}`, string(data))
}

func (s *LobbySuite) TestSendWritesBinaryFramesForMsgPack() {
	s.lobby.Reset()
	s.server.Close()
	s.start(codec.MsgPack{})

	s.mustDial("team1")
	client := s.mustDial("team2")
	agents := s.await()

	s.Require().NoError(agents[1].Send([]byte{0x80}))

	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	messageType, data, err := client.ReadMessage()
	s.Require().NoError(err)
	s.Equal(websocket.BinaryMessage, messageType)
	s.Equal([]byte{0x80}, data)
}

func (s *LobbySuite) TestResponsesAreDelivered() {
	client := s.mustDial("team1")
	s.mustDial("team2")
	agents := s.await()

	got := make(chan received, 1)
	agents[0].Attach(func(id model.AgentID, payload []byte) error {
		got <- received{agentID: id, payload: payload}
		return nil
	})

	s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(`{"actions":[]}`)))

	select {
	case r := <-got:
		s.Equal(model.AgentTeam1, r.agentID)
		s.Equal(`{"actions":[]}`, string(r.payload))
	case <-time.After(time.Second):
		s.Fail("response not delivered")
	}
}

func (s *LobbySuite) TestSendAfterCloseFails() {
	s.mustDial("team1")
	s.mustDial("team2")
	agents := s.await()

	agents[0].Close()
	<-agents[0].Done()

	err := agents[0].Send([]byte("{}"))
	s.True(errors.Is(err, model.ErrAgentClosed))
}

func (s *LobbySuite) TestResetDisconnectsAgents() {
	client := s.mustDial("team1")
	s.mustDial("team2")
	s.await()

	s.lobby.Reset()

	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := client.ReadMessage()
	s.Error(err)
	s.False(s.lobby.Connected(model.AgentTeam1))

	// The slots are free for the next match
	s.mustDial("team1")
	s.mustDial("team2")
	s.Len(s.await(), 2)
}
