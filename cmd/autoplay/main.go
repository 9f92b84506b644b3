// Command autoplay plays a match against a running server through the REST
// API. Each player turn it plans one greedy step per unit, either fleeing the
// nearest enemy (evade) or closing in on it (hunt), sends the clicks as one
// bulk request and ends the turn for units that stayed put. Stepped enemy
// phases are driven with advance.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/grid-tactics/game/engine"
	"github.com/wricardo/grid-tactics/game/service"
)

// Summary describes a finished autoplay run
type Summary struct {
	SessionID       string
	Turns           int
	PlayerMoves     int
	EnemyMoves      int
	Contact         bool
	ClosestDistance int // smallest seen, -1 when a faction is empty
	FinalTurn       int
}

func (s *Summary) count(actions []engine.ActionRecord) {
	for _, a := range actions {
		if a.Kind != engine.ActionMove {
			continue
		}
		if a.Faction == engine.Player {
			s.PlayerMoves++
		} else {
			s.EnemyMoves++
		}
	}
}

func (s *Summary) observe(state *engine.MatchState) error {
	registry, err := engine.RegistryFromState(state)
	if err != nil {
		return err
	}

	s.Contact = false
	for _, u := range registry.UnitsOf(engine.Player) {
		_, d, ok := engine.FindNearestEnemy(registry, u.Position)
		if !ok {
			continue
		}
		if s.ClosestDistance == -1 || d < s.ClosestDistance {
			s.ClosestDistance = d
		}
		if d <= 1 {
			s.Contact = true
		}
	}
	s.FinalTurn = state.Turn
	return nil
}

// play runs up to maxTurns player turns. Hunting stops at first contact.
func play(ctx context.Context, client *Client, planner *Planner, state *engine.MatchState, maxTurns int, delay time.Duration) (*Summary, error) {
	summary := &Summary{SessionID: client.SessionID(), ClosestDistance: -1}
	if err := summary.observe(state); err != nil {
		return nil, err
	}

	var err error
	for summary.Turns < maxTurns {
		if planner.strategy == StrategyHunt && summary.Contact {
			break
		}

		if state, err = finishEnemyPhase(ctx, client, state, summary); err != nil {
			return summary, err
		}
		turn := state.Turn

		clicks, err := planner.Plan(state)
		if err != nil {
			return summary, err
		}
		for len(clicks) > 0 {
			batch := clicks
			if len(batch) > service.MaxBulkClicks {
				batch = batch[:service.MaxBulkClicks]
			}
			clicks = clicks[len(batch):]

			result, err := client.BulkClick(ctx, batch)
			if err != nil {
				return summary, err
			}
			if result.StoppedReason != "" {
				return summary, eris.Errorf("click %d rejected: %s", result.StoppedOnClick, result.StoppedReason)
			}
			summary.count(result.Actions)
			state = result.State
		}

		if state.Phase == engine.PlayerTurn && state.Turn == turn {
			result, err := client.EndTurn(ctx)
			if err != nil {
				return summary, err
			}
			summary.count(result.Actions)
			state = result.State
		}

		if state, err = finishEnemyPhase(ctx, client, state, summary); err != nil {
			return summary, err
		}

		summary.Turns++
		if err := summary.observe(state); err != nil {
			return summary, err
		}
		log.Debug().
			Int("turn", state.Turn).
			Int("closest", summary.ClosestDistance).
			Bool("contact", summary.Contact).
			Strs("board", engine.RenderBoard(engine.NewGrid(state.Width, state.Height, engine.DefaultCellSize), state.Units, nil)).
			Msg("turn played")

		if delay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return summary, nil
}

// finishEnemyPhase advances a stepped enemy phase until the player is back
func finishEnemyPhase(ctx context.Context, client *Client, state *engine.MatchState, summary *Summary) (*engine.MatchState, error) {
	for state.Phase == engine.EnemyTurn {
		result, err := client.Advance(ctx)
		if err != nil {
			return state, err
		}
		if result.Outcome != engine.OutcomeAdvanced {
			return state, eris.New("server refused to advance the enemy phase")
		}
		summary.count(result.Actions)
		state = result.State
	}
	return state, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play a grid tactics match through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "scenario", Usage: "scenario ID for a new session (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "resume an existing session by ID"},
			&cli.StringFlag{Name: "strategy", Value: StrategyHunt, Usage: "evade or hunt"},
			&cli.IntFlag{Name: "turns", Value: 20, Usage: "maximum player turns"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between turns"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("v") {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			planner, err := NewPlanner(cmd.String("strategy"))
			if err != nil {
				return err
			}

			client := NewClient(cmd.String("url"))
			var state *engine.MatchState
			if id := cmd.String("continue"); id != "" {
				state, err = client.Resume(ctx, id)
				log.Info().Str("session", id).Msg("resuming session")
			} else {
				state, err = client.CreateSession(ctx, cmd.String("scenario"))
				log.Info().Str("session", client.SessionID()).Msg("session created")
			}
			if err != nil {
				return err
			}

			summary, err := play(ctx, client, planner, state, cmd.Int("turns"), cmd.Duration("delay"))
			if err != nil {
				return err
			}

			log.Info().
				Str("session", summary.SessionID).
				Str("strategy", planner.strategy).
				Int("turns", summary.Turns).
				Int("player_moves", summary.PlayerMoves).
				Int("enemy_moves", summary.EnemyMoves).
				Int("closest", summary.ClosestDistance).
				Bool("contact", summary.Contact).
				Msg("autoplay finished")
			return nil
		},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("autoplay failed")
	}
}
