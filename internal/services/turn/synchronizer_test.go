package turn

import (
	"errors"
	"testing"
	"time"

	"github.com/mcoot/codingworldcup/internal/codec"
	"github.com/mcoot/codingworldcup/internal/dependencies/mocks"
	"github.com/mcoot/codingworldcup/internal/geometry"
	"github.com/mcoot/codingworldcup/internal/model"
	"github.com/mcoot/codingworldcup/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type fakeAgent struct {
	id      model.AgentID
	sent    [][]byte
	sendErr error
}

func (a *fakeAgent) ID() model.AgentID {
	return a.id
}

func (a *fakeAgent) Send(data []byte) error {
	if a.sendErr != nil {
		return a.sendErr
	}
	a.sent = append(a.sent, data)
	return nil
}

type SynchronizerSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	codec   codec.Codec
	team1   *fakeAgent
	team2   *fakeAgent
	sync    *Synchronizer
	results []Result
}

func TestSynchronizerSuite(t *testing.T) {
	suite.Run(t, new(SynchronizerSuite))
}

func (s *SynchronizerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.codec = codec.JSON{}
	s.team1 = &fakeAgent{id: model.AgentTeam1}
	s.team2 = &fakeAgent{id: model.AgentTeam2}
	s.results = nil

	sync, err := New([]Agent{s.team1, s.team2}, s.codec, s.clock, testutil.NopLogger(), func(r Result) {
		s.results = append(s.results, r)
	})
	s.Require().NoError(err)
	s.sync = sync
}

func (s *SynchronizerSuite) snapshot() *model.Snapshot {
	return &model.Snapshot{
		Request: model.RequestPlay,
		Game:    model.GameInfo{CurrentTimeSeconds: 3, Phase: model.PhasePlay},
		Team1:   model.TeamSnapshot{AgentID: model.AgentTeam1, Direction: model.DirectionRight},
		Team2:   model.TeamSnapshot{AgentID: model.AgentTeam2, Direction: model.DirectionLeft},
		Ball:    model.BallState{ControllingPlayerNumber: model.NoPlayer},
	}
}

func (s *SynchronizerSuite) encode(commands ...model.ActionCommand) []byte {
	return s.encodeFor("", commands...)
}

// encodeFor encodes a reply to the given turn
func (s *SynchronizerSuite) encodeFor(turnID string, commands ...model.ActionCommand) []byte {
	data, err := s.codec.Marshal(model.CommandSet{TurnID: turnID, Actions: commands})
	s.Require().NoError(err)
	return data
}

// New tests

func (s *SynchronizerSuite) TestNewRequiresTwoDistinctAgents() {
	handler := func(Result) {}
	logger := testutil.NopLogger()

	_, err := New([]Agent{s.team1}, s.codec, s.clock, logger, handler)
	s.ErrorIs(err, model.ErrInvalidConfig)

	_, err = New([]Agent{s.team1, &fakeAgent{id: model.AgentTeam1}}, s.codec, s.clock, logger, handler)
	s.ErrorIs(err, model.ErrInvalidConfig)

	_, err = New([]Agent{s.team1, &fakeAgent{id: "team3"}}, s.codec, s.clock, logger, handler)
	s.ErrorIs(err, model.ErrUnknownAgent)
}

// BeginTurn tests

func (s *SynchronizerSuite) TestBeginTurnSendsIdenticalBytesToBothAgents() {
	snap := s.snapshot()
	s.Require().NoError(s.sync.BeginTurn(snap))

	s.Require().Len(s.team1.sent, 1)
	s.Require().Len(s.team2.sent, 1)
	s.Equal(s.team1.sent[0], s.team2.sent[0])
	s.True(s.sync.Pending())

	var decoded model.Snapshot
	s.Require().NoError(s.codec.Unmarshal(s.team1.sent[0], &decoded))
	s.Equal(*snap, decoded)
}

func (s *SynchronizerSuite) TestBeginTurnAssignsFreshTurnID() {
	first := s.snapshot()
	s.Require().NoError(s.sync.BeginTurn(first))
	s.NotEmpty(first.TurnID)
	s.Equal(first.TurnID, s.sync.TurnID())

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))

	second := s.snapshot()
	s.Require().NoError(s.sync.BeginTurn(second))
	s.NotEqual(first.TurnID, second.TurnID)
}

func (s *SynchronizerSuite) TestBeginTurnReportsSendFailures() {
	s.team2.sendErr = model.ErrAgentClosed

	err := s.sync.BeginTurn(s.snapshot())

	s.ErrorIs(err, model.ErrAgentClosed)
	s.Len(s.team1.sent, 1)
	s.True(s.sync.Pending())
}

// OnResponse ordering tests

func (s *SynchronizerSuite) TestTeam1ThenTeam2Completes() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode(model.TurnCommand(0, 90))))
	s.Empty(s.results)
	s.True(s.sync.Pending())

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode(model.TurnCommand(6, 270))))
	s.Require().Len(s.results, 1)
	s.False(s.sync.Pending())

	result := s.results[0]
	s.Equal(s.sync.TurnID(), result.TurnID)
	s.Require().NotNil(result.Response(model.AgentTeam1).Commands)
	s.Require().NotNil(result.Response(model.AgentTeam2).Commands)
	s.Equal(0, *result.Response(model.AgentTeam1).Commands.Actions[0].PlayerNumber)
	s.Equal(6, *result.Response(model.AgentTeam2).Commands.Actions[0].PlayerNumber)
}

func (s *SynchronizerSuite) TestTeam2ThenTeam1Completes() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode(model.TurnCommand(6, 270))))
	s.Empty(s.results)

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode(model.TurnCommand(0, 90))))
	s.Require().Len(s.results, 1)

	result := s.results[0]
	s.Equal(6, *result.Response(model.AgentTeam2).Commands.Actions[0].PlayerNumber)
	s.Equal(0, *result.Response(model.AgentTeam1).Commands.Actions[0].PlayerNumber)
}

func (s *SynchronizerSuite) TestRepeatBeforeCompletionReplacesResponse() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode(model.TurnCommand(0, 90))))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode(model.TurnCommand(0, 180))))
	s.Empty(s.results, "a repeat from the same agent must not complete the turn")

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))
	s.Require().Len(s.results, 1)
	s.Equal(180.0, *s.results[0].Response(model.AgentTeam1).Commands.Actions[0].Direction)
}

func (s *SynchronizerSuite) TestResponseAfterCompletionIsRejected() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))

	err := s.sync.OnResponse(model.AgentTeam1, s.encode())

	s.ErrorIs(err, model.ErrTurnComplete)
	s.Len(s.results, 1, "handler must fire exactly once per turn")
}

func (s *SynchronizerSuite) TestResponseBeforeAnyTurnIsRejected() {
	err := s.sync.OnResponse(model.AgentTeam1, s.encode())

	s.ErrorIs(err, model.ErrNoTurnInProgress)
	s.Empty(s.results)
}

func (s *SynchronizerSuite) TestUnknownAgentIsRejected() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	err := s.sync.OnResponse("team3", s.encode())

	s.ErrorIs(err, model.ErrUnknownAgent)
	s.True(s.sync.Pending())
}

func (s *SynchronizerSuite) TestEachTurnCompletesIndependently() {
	for range 3 {
		s.Require().NoError(s.sync.BeginTurn(s.snapshot()))
		s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))
		s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
	}
	s.Len(s.results, 3)
}

func (s *SynchronizerSuite) TestResponseFromBeforeTurnIsStale() {
	queuedAt := s.clock.Now()
	s.clock.Advance(time.Second)
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	err := s.sync.OnResponseAt(model.AgentTeam1, s.encode(), queuedAt)

	s.ErrorIs(err, model.ErrStaleResponse)
	s.True(s.sync.Pending())
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))
	s.Len(s.results, 1)
}

func (s *SynchronizerSuite) TestLateAnswerToExpiredTurnIsStale() {
	first := s.snapshot()
	s.Require().NoError(s.sync.BeginTurn(first))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encodeFor(first.TurnID)))
	s.clock.Advance(time.Second)
	s.Require().True(s.sync.Expire())

	second := s.snapshot()
	s.Require().NoError(s.sync.BeginTurn(second))
	s.clock.Advance(10 * time.Millisecond)

	err := s.sync.OnResponse(model.AgentTeam2, s.encodeFor(first.TurnID, model.TurnCommand(6, 123)))
	s.ErrorIs(err, model.ErrStaleResponse)
	s.True(s.sync.Pending())

	s.clock.Advance(490 * time.Millisecond)
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encodeFor(second.TurnID, model.TurnCommand(6, 45))))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encodeFor(second.TurnID)))

	s.Require().Len(s.results, 2)
	late := s.results[1].Response(model.AgentTeam2)
	s.Require().NotNil(late.Commands)
	s.Equal(second.TurnID, late.Commands.TurnID)
	s.InDelta(45.0, *late.Commands.Actions[0].Direction, 1e-9)
	s.InDelta(0.5, late.ProcessingTimeSeconds, 1e-9)
	s.False(late.TimedOut)
}

func (s *SynchronizerSuite) TestAnswerForCurrentTurnIsAccepted() {
	snap := s.snapshot()
	s.Require().NoError(s.sync.BeginTurn(snap))

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encodeFor(snap.TurnID)))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))

	s.Len(s.results, 1)
}

func (s *SynchronizerSuite) TestOnResponseAtMeasuresFromReceipt() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))
	received := s.clock.Now().Add(150 * time.Millisecond)
	s.clock.Advance(time.Second)

	s.Require().NoError(s.sync.OnResponseAt(model.AgentTeam1, s.encode(), received))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))

	s.InDelta(0.15, s.sync.ProcessingTimeSeconds(model.AgentTeam1), 1e-9)
	s.InDelta(1.0, s.sync.ProcessingTimeSeconds(model.AgentTeam2), 1e-9)
}

// Decoding tests

func (s *SynchronizerSuite) TestDecodeFailureIsDeliveredToHandler() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, []byte("{not json")))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode(model.TurnCommand(6, 0))))
	s.Require().Len(s.results, 1)

	bad := s.results[0].Response(model.AgentTeam1)
	s.Nil(bad.Commands)
	var decodeErr *model.DecodeError
	s.Require().ErrorAs(bad.Err, &decodeErr)
	s.Equal(model.AgentTeam1, decodeErr.AgentID)
	s.Equal([]byte("{not json"), bad.Raw)

	good := s.results[0].Response(model.AgentTeam2)
	s.NoError(good.Err)
	s.Require().NotNil(good.Commands)
	s.Len(good.Commands.Actions, 1)
}

func (s *SynchronizerSuite) TestMsgPackResponses() {
	c := codec.MsgPack{}
	sync, err := New([]Agent{s.team1, s.team2}, c, s.clock, testutil.NopLogger(), func(r Result) {
		s.results = append(s.results, r)
	})
	s.Require().NoError(err)
	s.Require().NoError(sync.BeginTurn(s.snapshot()))

	data, err := c.Marshal(model.CommandSet{Actions: []model.ActionCommand{
		model.KickCommand(2, geometry.Position{X: 100, Y: 25}, 80),
	}})
	s.Require().NoError(err)
	s.Require().NoError(sync.OnResponse(model.AgentTeam1, data))
	s.Require().NoError(sync.OnResponse(model.AgentTeam2, data))

	s.Require().Len(s.results, 1)
	cmd := s.results[0].Response(model.AgentTeam1).Commands.Actions[0]
	s.Equal(model.ActionKick, cmd.Action)
	s.Equal(geometry.Position{X: 100, Y: 25}, *cmd.Destination)
}

// Processing time tests

func (s *SynchronizerSuite) TestProcessingTimeIsMeasuredFromSend() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	s.clock.Advance(200 * time.Millisecond)
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
	s.clock.Advance(300 * time.Millisecond)
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))

	s.Require().Len(s.results, 1)
	s.InDelta(0.2, s.results[0].Response(model.AgentTeam1).ProcessingTimeSeconds, 1e-9)
	s.InDelta(0.5, s.results[0].Response(model.AgentTeam2).ProcessingTimeSeconds, 1e-9)
	s.InDelta(0.2, s.sync.ProcessingTimeSeconds(model.AgentTeam1), 1e-9)
	s.InDelta(0.5, s.sync.ProcessingTimeSeconds(model.AgentTeam2), 1e-9)
}

func (s *SynchronizerSuite) TestProcessingTimeAccumulatesAcrossTurns() {
	for range 2 {
		s.Require().NoError(s.sync.BeginTurn(s.snapshot()))
		s.clock.Advance(100 * time.Millisecond)
		s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
		s.clock.Advance(100 * time.Millisecond)
		s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))
	}

	totals := s.sync.ProcessingTimes()
	s.InDelta(0.2, totals[model.AgentTeam1], 1e-9)
	s.InDelta(0.4, totals[model.AgentTeam2], 1e-9)
}

func (s *SynchronizerSuite) TestReplacedResponseUsesLatestTime() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	s.clock.Advance(100 * time.Millisecond)
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
	s.clock.Advance(100 * time.Millisecond)
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))

	s.InDelta(0.2, s.sync.ProcessingTimeSeconds(model.AgentTeam1), 1e-9)
}

// Expire tests

func (s *SynchronizerSuite) TestExpireFillsMissingResponses() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode(model.TurnCommand(0, 90))))
	s.clock.Advance(2 * time.Second)

	s.True(s.sync.Expire())

	s.Require().Len(s.results, 1)
	answered := s.results[0].Response(model.AgentTeam1)
	s.False(answered.TimedOut)
	s.Len(answered.Commands.Actions, 1)

	silent := s.results[0].Response(model.AgentTeam2)
	s.True(silent.TimedOut)
	s.Require().NotNil(silent.Commands)
	s.Empty(silent.Commands.Actions)
	s.NoError(silent.Err)
	s.InDelta(2.0, silent.ProcessingTimeSeconds, 1e-9)
	s.InDelta(2.0, s.sync.ProcessingTimeSeconds(model.AgentTeam2), 1e-9)
}

func (s *SynchronizerSuite) TestExpireFiresOnlyOnce() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))

	s.True(s.sync.Expire())
	s.False(s.sync.Expire())
	s.ErrorIs(s.sync.OnResponse(model.AgentTeam1, s.encode()), model.ErrTurnComplete)
	s.Len(s.results, 1)
}

func (s *SynchronizerSuite) TestExpireAfterCompletionIsNoOp() {
	s.Require().NoError(s.sync.BeginTurn(s.snapshot()))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam1, s.encode()))
	s.Require().NoError(s.sync.OnResponse(model.AgentTeam2, s.encode()))

	s.False(s.sync.Expire())
	s.Len(s.results, 1)
}

func (s *SynchronizerSuite) TestExpireWithoutTurnIsNoOp() {
	s.False(s.sync.Expire())
	s.Empty(s.results)
}

// Reentrancy

func (s *SynchronizerSuite) TestHandlerMayBeginNextTurn() {
	var sync *Synchronizer
	turns := 0
	sync, err := New([]Agent{s.team1, s.team2}, s.codec, s.clock, testutil.NopLogger(), func(r Result) {
		turns++
		if turns < 2 {
			s.Require().NoError(sync.BeginTurn(s.snapshot()))
		}
	})
	s.Require().NoError(err)

	s.Require().NoError(sync.BeginTurn(s.snapshot()))
	s.Require().NoError(sync.OnResponse(model.AgentTeam1, s.encode()))
	s.Require().NoError(sync.OnResponse(model.AgentTeam2, s.encode()))

	s.Equal(1, turns)
	s.True(sync.Pending())
}

func (s *SynchronizerSuite) TestSendErrorsAreWrapped() {
	boom := errors.New("boom")
	s.team1.sendErr = boom
	s.team2.sendErr = boom

	err := s.sync.BeginTurn(s.snapshot())

	s.ErrorIs(err, boom)
	s.Contains(err.Error(), "team1")
	s.Contains(err.Error(), "team2")
}
