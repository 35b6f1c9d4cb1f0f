package engine

import (
	"errors"
	"fmt"

	"github.com/mcoot/codingworldcup/internal/dependencies/random"
	"github.com/mcoot/codingworldcup/internal/geometry"
	"github.com/mcoot/codingworldcup/internal/model"
)

const (
	// ControlDistance is how close a player must be to take a free ball, in metres
	ControlDistance = 0.5
	// MaxControllableSpeed is the fastest free ball a player can take, in metres/second
	MaxControllableSpeed = 15.0
	// KickRecoverySeconds is how long after kicking before the kicker can take the ball back
	KickRecoverySeconds = 0.5

	// defensiveLine is the distance of outfield players from their own goal line at kickoff
	defensiveLine = 30.0
)

// Game owns the teams, players and ball for one match and advances them in
// fixed calculation ticks of virtual time
type Game struct {
	cfg    Config
	random random.Random

	team1   *Team
	team2   *Team
	players []*Player
	ball    *Ball

	ticks int

	lastKicker     int
	lastKickTick   int
	kickedThisTick bool

	// pendingGoal is the team that scored since the last kickoff, or ""
	pendingGoal model.AgentID
}

// New creates a game with both teams and the ball on the centre spot
func New(cfg Config, rnd random.Random) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		cfg:          cfg,
		random:       rnd,
		ball:         NewBall(),
		lastKicker:   model.NoPlayer,
		lastKickTick: -1,
	}
	g.CreateTeams()
	return g, nil
}

// CreateTeams builds both teams. Player numbers are unique and ascending
// across both teams, starting at 0, with each goalkeeper numbered last.
func (g *Game) CreateTeams() {
	g.players = nil
	number := 0
	g.team1 = NewTeam(model.AgentTeam1, model.DirectionRight, g.addPlayers(&number))
	g.team2 = NewTeam(model.AgentTeam2, model.DirectionLeft, g.addPlayers(&number))
}

func (g *Game) addPlayers(number *int) []*Player {
	players := make([]*Player, 0, g.cfg.PlayersPerTeam+1)
	for i := 0; i <= g.cfg.PlayersPerTeam; i++ {
		playerType := model.PlayerTypePlayer
		if i == g.cfg.PlayersPerTeam {
			playerType = model.PlayerTypeGoalkeeper
		}
		p := NewPlayer(*number, playerType, g.cfg.RunningAbility, g.cfg.PassingAbility, g.random)
		players = append(players, p)
		g.players = append(g.players, p)
		*number++
	}
	return players
}

// Config returns the game's settings
func (g *Game) Config() Config {
	return g.cfg
}

// Team1 returns the first team
func (g *Game) Team1() *Team {
	return g.team1
}

// Team2 returns the second team
func (g *Game) Team2() *Team {
	return g.team2
}

// Team returns the team controlled by the given agent, or nil for an
// unknown agent
func (g *Game) Team(id model.AgentID) *Team {
	switch id {
	case model.AgentTeam1:
		return g.team1
	case model.AgentTeam2:
		return g.team2
	default:
		return nil
	}
}

// Players returns every player in the game, in number order
func (g *Game) Players() []*Player {
	return g.players
}

// Ball returns the match ball
func (g *Game) Ball() *Ball {
	return g.ball
}

// TimeSeconds returns the elapsed virtual game time
func (g *Game) TimeSeconds() float64 {
	return float64(g.ticks) * g.cfg.CalculationIntervalSeconds
}

// Score returns the current score
func (g *Game) Score() model.Score {
	return model.Score{Team1: g.team1.score, Team2: g.team2.score}
}

// PendingGoal returns the team that scored since the last kickoff, or ""
func (g *Game) PendingGoal() model.AgentID {
	return g.pendingGoal
}

// Calculate advances the game by one calculation tick: players carry out
// their actions, then the ball moves and possession is resolved.
func (g *Game) Calculate() {
	g.kickedThisTick = false

	g.team1.UpdatePositions(g)
	g.team2.UpdatePositions(g)

	g.updateBall()
	g.ticks++
}

func (g *Game) updateBall() {
	if holder := g.holder(); holder != nil {
		g.ball.State.Position = holder.Dynamic.Position
		return
	}
	if g.pendingGoal != "" {
		return
	}

	// A kick this tick has already moved the ball
	if !g.kickedThisTick {
		g.ball.UpdatePosition(g.cfg.CalculationIntervalSeconds)
	}
	if g.checkBoundaries() {
		return
	}
	g.resolvePossession()
}

// checkBoundaries stops a ball leaving the pitch and records goals.
// Returns true if a goal was scored.
func (g *Game) checkBoundaries() bool {
	pos := g.ball.State.Position

	if pos.X <= 0 || pos.X >= PitchWidth {
		if inGoalMouth(pos.Y) {
			g.scoreGoal(pos.X >= PitchWidth)
			return true
		}
	}

	clamped := geometry.Position{X: clamp(pos.X, 0, PitchWidth), Y: clamp(pos.Y, 0, PitchHeight)}
	if clamped != pos {
		g.ball.PlaceAt(clamped)
	}
	return false
}

func (g *Game) scoreGoal(rightGoal bool) {
	scorer := g.team1
	if g.team1.AttacksRight() != rightGoal {
		scorer = g.team2
	}
	scorer.score++
	g.pendingGoal = scorer.agentID
	g.ball.Stop()
}

// resolvePossession gives a slow enough free ball to the nearest player in reach
func (g *Game) resolvePossession() {
	if g.ball.State.Speed > MaxControllableSpeed {
		return
	}

	var nearest *Player
	nearestDistance := ControlDistance
	for _, p := range g.players {
		if p.Number() == g.lastKicker && g.inKickRecovery() {
			continue
		}
		d := p.Dynamic.Position.DistanceTo(g.ball.State.Position)
		if d <= nearestDistance {
			nearest = p
			nearestDistance = d
		}
	}
	if nearest != nil {
		g.GiveBall(nearest)
	}
}

func (g *Game) inKickRecovery() bool {
	if g.lastKickTick < 0 {
		return false
	}
	return float64(g.ticks-g.lastKickTick)*g.cfg.CalculationIntervalSeconds < KickRecoverySeconds
}

// GiveBall makes p the only player in possession
func (g *Game) GiveBall(p *Player) {
	for _, other := range g.players {
		other.Dynamic.HasBall = false
	}
	p.Dynamic.HasBall = true
	g.ball.Stop()
	g.ball.State.ControllingPlayerNumber = p.Number()
	g.ball.State.Position = p.Dynamic.Position
}

func (g *Game) holder() *Player {
	if !g.ball.State.IsControlled() {
		return nil
	}
	for _, p := range g.players {
		if p.Number() == g.ball.State.ControllingPlayerNumber {
			return p
		}
	}
	return nil
}

func (g *Game) kickBall(p *Player, vector geometry.Vector, speed float64) {
	g.ball.Kick(vector, speed)
	g.ball.UpdatePosition(g.cfg.CalculationIntervalSeconds)
	g.lastKicker = p.Number()
	g.lastKickTick = g.ticks
	g.kickedThisTick = true
}

// ApplyCommands is the merge step for one agent's response. Each command is
// validated and applied by the player it names; a rejected command leaves that
// player unchanged and does not stop the others. All rejections are returned.
func (g *Game) ApplyCommands(agentID model.AgentID, commands *model.CommandSet) error {
	team := g.Team(agentID)
	if team == nil {
		return fmt.Errorf("%w: %s", model.ErrUnknownAgent, agentID)
	}
	if commands == nil {
		return nil
	}

	var errs []error
	for _, cmd := range commands.Actions {
		if cmd.PlayerNumber == nil {
			errs = append(errs, &model.CommandError{
				PlayerNumber: model.NoPlayer,
				Action:       string(cmd.Action),
				Field:        "playerNumber",
				Err:          model.ErrMissingField,
			})
			continue
		}
		p := team.Player(*cmd.PlayerNumber)
		if p == nil {
			errs = append(errs, &model.CommandError{
				PlayerNumber: *cmd.PlayerNumber,
				Action:       string(cmd.Action),
				Err:          model.ErrPlayerNotOnTeam,
			})
			continue
		}
		if err := p.SetAction(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetupKickoff lines both teams up in their own halves, facing the opposition
// goal, and gives the ball to the kicking-off team's first player on the
// centre spot. kickingOff must be team1 or team2.
func (g *Game) SetupKickoff(kickingOff model.AgentID) {
	g.pendingGoal = ""
	g.lastKicker = model.NoPlayer
	g.lastKickTick = -1

	for _, team := range []*Team{g.team1, g.team2} {
		g.lineUp(team)
	}

	g.ball.PlaceAt(Centre())
	kicker := g.Team(kickingOff).Players()[0]
	kicker.Dynamic.Position = Centre()
	g.GiveBall(kicker)
}

func (g *Game) lineUp(team *Team) {
	facing := 90.0
	ownGoalX := 0.0
	sign := 1.0
	if !team.AttacksRight() {
		facing = 270.0
		ownGoalX = PitchWidth
		sign = -1.0
	}

	outfield := 0
	for _, p := range team.Players() {
		p.Action = model.ActionState{Action: model.ActionNone}
		p.Dynamic.Direction = facing
		p.Dynamic.HasBall = false

		if p.IsGoalkeeper() {
			p.Dynamic.Position = geometry.Position{X: ownGoalX + sign*0.5, Y: PitchHeight / 2.0}
			continue
		}
		outfield++
		y := float64(outfield) * PitchHeight / float64(g.cfg.PlayersPerTeam+1)
		p.Dynamic.Position = geometry.Position{X: ownGoalX + sign*defensiveLine, Y: y}
	}
}

// SwapEnds switches the direction both teams attack, for the second half
func (g *Game) SwapEnds() {
	g.team1.swapDirection()
	g.team2.swapDirection()
}

// Snapshot returns the state sent to agents. Action state is only included
// when publicOnly is false.
func (g *Game) Snapshot(request model.RequestType, phase model.Phase, publicOnly bool) *model.Snapshot {
	return &model.Snapshot{
		Request: request,
		Game: model.GameInfo{
			CurrentTimeSeconds: g.TimeSeconds(),
			Phase:              phase,
			Score:              g.Score(),
		},
		Team1: g.team1.Snapshot(publicOnly),
		Team2: g.team2.Snapshot(publicOnly),
		Ball:  g.ball.State,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
