package tictactoe

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
)

// Minimax returns the optimal action for the player on turn, or false when the board is terminal.
// Actions are tried in row-major order and only a strictly better value replaces the current
// choice, so the first optimal action wins ties.
func Minimax(board entity.Board) (entity.Action, bool) {
	action, _, ok := Search(board)
	return action, ok
}

// Evaluate returns the value of board under perfect play from both sides:
// +1 when X wins, -1 when O wins, 0 for a draw.
func Evaluate(board entity.Board) int {
	_, value, _ := Search(board)
	return value
}

// Search runs a single minimax pass and returns the chosen action together with the board's value.
// On a terminal board the value is its utility and ok is false.
func Search(board entity.Board) (entity.Action, int, bool) {
	if board.Terminal() {
		return entity.Action{}, board.Utility(), false
	}

	var best entity.Action

	if board.Player() == entity.PlayerX {
		value := math.MinInt
		for _, action := range board.Actions() {
			if v := minValue(mustResult(board, action)); v > value {
				value = v
				best = action
			}
		}

		return best, value, true
	}

	value := math.MaxInt
	for _, action := range board.Actions() {
		if v := maxValue(mustResult(board, action)); v < value {
			value = v
			best = action
		}
	}

	return best, value, true
}

func maxValue(board entity.Board) int {
	if board.Terminal() {
		return board.Utility()
	}

	value := math.MinInt
	for _, action := range board.Actions() {
		value = max(value, minValue(mustResult(board, action)))
	}

	return value
}

func minValue(board entity.Board) int {
	if board.Terminal() {
		return board.Utility()
	}

	value := math.MaxInt
	for _, action := range board.Actions() {
		value = min(value, maxValue(mustResult(board, action)))
	}

	return value
}

// mustResult applies an action taken from board.Actions(), which is always legal.
func mustResult(board entity.Board, action entity.Action) entity.Board {
	next, err := board.Result(action)
	if err != nil {
		panic(err)
	}

	return next
}
