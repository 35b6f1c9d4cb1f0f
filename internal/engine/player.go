package engine

import (
	"math"

	"github.com/mcoot/codingworldcup/internal/dependencies/random"
	"github.com/mcoot/codingworldcup/internal/geometry"
	"github.com/mcoot/codingworldcup/internal/model"
)

const (
	// MaxSpeed is the running speed, in metres/second, of a player with
	// full running ability and full energy
	MaxSpeed = 10.0
	// MaxEnergy is the energy every player starts with
	MaxEnergy = 100.0
	// MaxTurningRate is the fastest a player can turn, in degrees/second
	MaxTurningRate = 600.0

	// maxSkillVariation is the kick spread, in degrees, at zero passing ability
	maxSkillVariation = 360.0
	// maxFacingVariation is the kick spread, in degrees, when kicking directly behind
	maxFacingVariation = 90.0
)

// Player is one player on the pitch.
//
// Dynamic and Static state are public and sent to both agents. Action state
// is private to the controlling agent and is only changed through SetAction
// and by the player's own action processing.
type Player struct {
	Dynamic model.DynamicState
	Static  model.StaticState
	Action  model.ActionState

	random random.Random
}

// actionFunc processes one tick of an action. resetWhenComplete is false when
// the action runs as a sub-step of another, e.g. the turn at the start of a move.
type actionFunc func(p *Player, g *Game, resetWhenComplete bool)

// actionSetter validates a command and sets the matching action state
type actionSetter func(p *Player, cmd model.ActionCommand) error

var actionProcessors = map[model.Action]actionFunc{
	model.ActionMove: (*Player).processMove,
	model.ActionTurn: (*Player).processTurn,
	model.ActionKick: (*Player).processKick,
}

var actionSetters = map[model.Action]actionSetter{
	model.ActionMove: (*Player).setMove,
	model.ActionTurn: (*Player).setTurn,
	model.ActionKick: (*Player).setKick,
}

// NewPlayer creates a player with full energy and no action
func NewPlayer(number int, playerType model.PlayerType, runningAbility, passingAbility float64, rnd random.Random) *Player {
	return &Player{
		Dynamic: model.DynamicState{Energy: MaxEnergy},
		Static: model.StaticState{
			PlayerNumber:   number,
			PlayerType:     playerType,
			RunningAbility: runningAbility,
			PassingAbility: passingAbility,
		},
		Action: model.ActionState{Action: model.ActionNone},
		random: rnd,
	}
}

// Number returns the player's shirt number, unique across both teams
func (p *Player) Number() int {
	return p.Static.PlayerNumber
}

// IsGoalkeeper reports whether this player is the team's goalkeeper
func (p *Player) IsGoalkeeper() bool {
	return p.Static.PlayerType == model.PlayerTypeGoalkeeper
}

// Speed returns the speed the player currently runs at, in metres/second
func (p *Player) Speed() float64 {
	runningAbility := p.Static.RunningAbility / 100.0
	energy := p.Dynamic.Energy / MaxEnergy
	return runningAbility * energy * MaxSpeed
}

// ProcessAction runs one tick of the player's current action
func (p *Player) ProcessAction(g *Game) {
	process, ok := actionProcessors[p.Action.Action]
	if !ok {
		return
	}
	process(p, g, true)
}

func (p *Player) processTurn(g *Game, resetWhenComplete bool) {
	current := p.Dynamic.Direction
	desired := p.Action.Direction

	angle := geometry.AngleDelta(current, desired)
	maxAngle := MaxTurningRate * g.cfg.CalculationIntervalSeconds
	if math.Abs(angle) > maxAngle {
		angle = math.Copysign(maxAngle, angle)
	}

	newDirection := geometry.NormaliseDirection(current + angle)
	p.Dynamic.Direction = newDirection

	if resetWhenComplete && geometry.AnglesApproxEqual(newDirection, desired) {
		p.Action.Action = model.ActionNone
	}
}

func (p *Player) processMove(g *Game, resetWhenComplete bool) {
	position := p.Dynamic.Position
	destination := p.Action.MoveDestination

	if position.ApproxEqual(destination) {
		p.Dynamic.Position = destination
		if resetWhenComplete {
			p.Action.Action = model.ActionNone
		}
		return
	}

	// Turn to face the destination before running
	directionToDestination := geometry.AngleBetween(position, destination)
	if !geometry.AnglesApproxEqual(p.Dynamic.Direction, directionToDestination) {
		p.Action.Direction = directionToDestination
		p.processTurn(g, false)
		return
	}

	distanceToDestination := position.DistanceTo(destination)
	distanceToMove := p.Speed() * g.cfg.CalculationIntervalSeconds
	newPosition := destination
	if distanceToMove < distanceToDestination {
		step := position.VectorTo(destination).Scale(distanceToMove / distanceToDestination)
		newPosition = position.Add(step)
	}
	// Snap the last sliver so repeated steps land exactly on the destination
	if newPosition.ApproxEqual(destination) {
		newPosition = destination
	}
	p.Dynamic.Position = newPosition

	if resetWhenComplete && newPosition == destination {
		p.Action.Action = model.ActionNone
	}
}

func (p *Player) processKick(g *Game, _ bool) {
	if !p.Dynamic.HasBall {
		// Someone else may have taken the ball since the kick was requested
		p.Action.Action = model.ActionNone
		return
	}

	position := p.Dynamic.Position
	desiredDirection := geometry.AngleBetween(position, p.Action.KickDestination)

	// Less skilful players kick less accurately
	maxSkill := (100.0 - p.Static.PassingAbility) / 100.0 * maxSkillVariation
	skillVariation := p.random.Float64()*maxSkill - maxSkill/2.0

	// Kicking away from the way the player faces is less accurate
	difference := math.Min(math.Abs(desiredDirection-p.Dynamic.Direction), 180.0)
	maxAngle := difference / 180.0 * maxFacingVariation
	angleVariation := p.random.Float64()*maxAngle - maxAngle/2.0

	direction := geometry.NormaliseDirection(desiredDirection + skillVariation + angleVariation)
	g.kickBall(p, geometry.VectorFromDirection(direction), p.Action.KickSpeed/100.0*g.ball.MaxSpeed())

	p.Dynamic.HasBall = false
	p.Action.Action = model.ActionNone
}

// SetAction validates an agent command and makes it the player's current action.
// The player's state is unchanged if the command is rejected.
func (p *Player) SetAction(cmd model.ActionCommand) error {
	if cmd.Action == "" {
		return p.missingField("", "action")
	}
	set, ok := actionSetters[cmd.Action]
	if !ok {
		return &model.CommandError{PlayerNumber: p.Number(), Action: string(cmd.Action), Err: model.ErrUnknownAction}
	}
	return set(p, cmd)
}

func (p *Player) setMove(cmd model.ActionCommand) error {
	if cmd.Destination == nil {
		return p.missingField(model.ActionMove, "destination")
	}
	if cmd.Speed == nil {
		return p.missingField(model.ActionMove, "speed")
	}
	p.Action.Action = model.ActionMove
	p.Action.MoveDestination = *cmd.Destination
	p.Action.MoveSpeed = *cmd.Speed
	return nil
}

func (p *Player) setTurn(cmd model.ActionCommand) error {
	if cmd.Direction == nil {
		return p.missingField(model.ActionTurn, "direction")
	}
	p.Action.Action = model.ActionTurn
	p.Action.Direction = geometry.NormaliseDirection(*cmd.Direction)
	return nil
}

func (p *Player) setKick(cmd model.ActionCommand) error {
	if cmd.Destination == nil {
		return p.missingField(model.ActionKick, "destination")
	}
	if cmd.Speed == nil {
		return p.missingField(model.ActionKick, "speed")
	}
	p.Action.Action = model.ActionKick
	p.Action.KickDestination = *cmd.Destination
	p.Action.KickSpeed = *cmd.Speed
	return nil
}

func (p *Player) missingField(action model.Action, field string) error {
	return &model.CommandError{
		PlayerNumber: p.Number(),
		Action:       string(action),
		Field:        field,
		Err:          model.ErrMissingField,
	}
}

// Snapshot returns the player's state for sending to agents.
// Action state is only included when publicOnly is false.
func (p *Player) Snapshot(publicOnly bool) model.PlayerSnapshot {
	s := model.PlayerSnapshot{
		Dynamic: p.Dynamic,
		Static:  p.Static,
	}
	if !publicOnly {
		action := p.Action
		s.Action = &action
	}
	return s
}
