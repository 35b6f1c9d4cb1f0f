package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/mcoot/codingworldcup/internal/api/response"
	"github.com/mcoot/codingworldcup/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *model.MatchResult:
		o.printMatchResult(v)
	case response.Match:
		o.printMatch(v)
	case response.MatchList:
		o.printMatchList(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\nMatches: %d\n", v.Status, v.Matches)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printMatchResult(r *model.MatchResult) {
	fmt.Fprintf(o.w, "Match: %s\n", r.ID)
	fmt.Fprintf(o.w, "Score: team1 %d - %d team2\n", r.Score.Team1, r.Score.Team2)
	if winner := r.Winner(); winner != "" {
		fmt.Fprintf(o.w, "Winner: %s\n", winner)
	} else {
		fmt.Fprintln(o.w, "Result: draw")
	}
	fmt.Fprintf(o.w, "Turns: %d (%.1fs of play)\n", r.Turns, r.TimeSeconds)

	fmt.Fprintln(o.w, "Processing time:")
	for _, id := range model.AgentIDs() {
		line := fmt.Sprintf("  %s: %.3fs", id, r.ProcessingTimeSeconds[id])
		if n := r.TimedOutTurns[id]; n > 0 {
			line += fmt.Sprintf(" (%d turns timed out)", n)
		}
		fmt.Fprintln(o.w, line)
	}
}

func (o *Output) printMatch(m response.Match) {
	o.printSummary(m.MatchSummary)

	ids := make([]string, 0, len(m.ProcessingTimeSeconds))
	for id := range m.ProcessingTimeSeconds {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if len(ids) > 0 {
		fmt.Fprintln(o.w, "Processing time:")
		for _, id := range ids {
			fmt.Fprintf(o.w, "  %s: %.3fs\n", id, m.ProcessingTimeSeconds[id])
		}
	}

	if m.Snapshot != nil {
		fmt.Fprintf(o.w, "Ball: (%.1f, %.1f)", m.Snapshot.Ball.Position.X, m.Snapshot.Ball.Position.Y)
		if m.Snapshot.Ball.IsControlled() {
			fmt.Fprintf(o.w, " held by player %d", m.Snapshot.Ball.ControllingPlayerNumber)
		}
		fmt.Fprintln(o.w)
		for _, team := range []model.TeamSnapshot{m.Snapshot.Team1, m.Snapshot.Team2} {
			fmt.Fprintf(o.w, "%s (attacking %s):\n", team.AgentID, team.Direction)
			for _, p := range team.Players {
				fmt.Fprintf(o.w, "  %2d %s (%.1f, %.1f) facing %.0f\n",
					p.Static.PlayerNumber, p.Static.PlayerType,
					p.Dynamic.Position.X, p.Dynamic.Position.Y, p.Dynamic.Direction)
			}
		}
	}
}

func (o *Output) printSummary(s response.MatchSummary) {
	fmt.Fprintf(o.w, "Match: %s\n", s.ID)
	fmt.Fprintf(o.w, "Phase: %s\n", s.Phase)
	fmt.Fprintf(o.w, "Turn: %d (%.1fs)\n", s.Turn, s.TimeSeconds)
	fmt.Fprintf(o.w, "Score: team1 %d - %d team2\n", s.Score.Team1, s.Score.Team2)
}

func (o *Output) printMatchList(l response.MatchList) {
	if len(l.Matches) == 0 {
		fmt.Fprintln(o.w, "No matches")
		return
	}
	for _, m := range l.Matches {
		fmt.Fprintf(o.w, "%s  %-9s  turn %-5d  %d - %d\n", m.ID, m.Phase, m.Turn, m.Score.Team1, m.Score.Team2)
	}
}
