package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	WinnerTie = "-"
)

// Game is a match between a human and the minimax bot.
type Game struct {
	ID        string `json:"id"`
	Board     Board  `json:"board"`
	HumanMark Mark   `json:"human_mark"`
	BotMark   Mark   `json:"bot_mark"`
	Turn      Mark   `json:"player_turn"`
	Winner    string `json:"winner"`
	Status    string `json:"status"`
}

func NewGame(id string, humanMark Mark) (*Game, error) {
	if humanMark != PlayerX && humanMark != PlayerO {
		return nil, fmt.Errorf("%w: human must play X or O", apperror.ErrInvalidMark)
	}

	game := &Game{
		ID:        id,
		Board:     InitialState(),
		HumanMark: humanMark,
		BotMark:   humanMark.Opponent(),
	}
	game.Refresh()

	return game, nil
}

// Play applies action for whoever is on turn and refreshes the game state.
func (that *Game) Play(action Action) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	next, err := that.Board.Result(action)
	if err != nil {
		return err
	}

	that.Board = next
	that.Refresh()

	return nil
}

// Refresh derives turn, status and winner from the board.
func (that *Game) Refresh() {
	outcome, over := that.Board.Outcome()
	if !over {
		that.Status = StatusOngoing
		that.Winner = ""
		that.Turn = that.Board.Player()
		return
	}

	that.Status = StatusFinished
	that.Turn = Empty

	switch outcome {
	case XWins:
		that.Winner = PlayerX.String()
	case OWins:
		that.Winner = PlayerO.String()
	default:
		that.Winner = WinnerTie
	}
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsHumanTurn() bool {
	return !that.IsFinished() && that.Board.Player() == that.HumanMark
}

func (that *Game) IsBotTurn() bool {
	return !that.IsFinished() && that.Board.Player() == that.BotMark
}
