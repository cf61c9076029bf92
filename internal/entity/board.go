package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
)

const BoardSize = 3

// Mark is the state of a single cell. PlayerX always moves first.
type Mark int8

const (
	Empty Mark = iota
	PlayerX
	PlayerO
)

const (
	markX     = "X"
	markO     = "O"
	markEmpty = ""
)

func (m Mark) String() string {
	switch m {
	case PlayerX:
		return markX
	case PlayerO:
		return markO
	default:
		return markEmpty
	}
}

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mark) UnmarshalText(text []byte) error {
	mark, err := ParseMark(string(text))
	if err != nil {
		return err
	}

	*m = mark

	return nil
}

// ParseMark accepts "X", "O" and "" (case-insensitive, surrounding spaces ignored).
func ParseMark(s string) (Mark, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case markX:
		return PlayerX, nil
	case markO:
		return PlayerO, nil
	case markEmpty:
		return Empty, nil
	default:
		return Empty, fmt.Errorf("%w: %q", apperror.ErrInvalidMark, s)
	}
}

// Action identifies a cell by row and column, both in [0, BoardSize).
type Action struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (a Action) valid() bool {
	return a.Row >= 0 && a.Row < BoardSize && a.Col >= 0 && a.Col < BoardSize
}

func (a Action) String() string {
	return fmt.Sprintf("(%d, %d)", a.Row, a.Col)
}

// Outcome of a finished game.
type Outcome int8

const (
	XWins Outcome = iota + 1
	OWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case XWins:
		return "x_wins"
	case OWins:
		return "o_wins"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

var winLines = [8][BoardSize]Action{
	// rows
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	// columns
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	// diagonals
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is a 3x3 grid. It is a value type: assigning or passing a Board copies every cell.
type Board [BoardSize][BoardSize]Mark

func InitialState() Board {
	return Board{}
}

// Player returns the mark whose turn it is. X moves whenever the counts are equal.
func (b Board) Player() Mark {
	xCount, oCount := b.count()
	if xCount > oCount {
		return PlayerO
	}

	return PlayerX
}

// Actions returns every empty cell in row-major order.
func (b Board) Actions() []Action {
	actions := make([]Action, 0, BoardSize*BoardSize)
	for row := range b {
		for col := range b[row] {
			if b[row][col] == Empty {
				actions = append(actions, Action{Row: row, Col: col})
			}
		}
	}

	return actions
}

// Result returns a copy of the board with the current player's mark placed at action.
// The receiver is never modified.
func (b Board) Result(action Action) (Board, error) {
	if !action.valid() {
		return b, fmt.Errorf("%w: %w %s", apperror.ErrIllegalMove, apperror.ErrInvalidCell, action)
	}

	if b[action.Row][action.Col] != Empty {
		return b, fmt.Errorf("%w: %w %s", apperror.ErrIllegalMove, apperror.ErrCellOccupied, action)
	}

	next := b
	next[action.Row][action.Col] = b.Player()

	return next, nil
}

// Winner returns the mark that owns a full line. X is checked before O.
func (b Board) Winner() (Mark, bool) {
	for _, mark := range [...]Mark{PlayerX, PlayerO} {
		if b.hasLine(mark) {
			return mark, true
		}
	}

	return Empty, false
}

// Terminal reports whether the game is over, either won or drawn on a full board.
func (b Board) Terminal() bool {
	if _, ok := b.Winner(); ok {
		return true
	}

	return b.full()
}

// Utility is +1 when X has won, -1 when O has won and 0 otherwise.
// It is only meaningful on a terminal board; a game in progress also yields 0.
func (b Board) Utility() int {
	switch winner, _ := b.Winner(); winner {
	case PlayerX:
		return 1
	case PlayerO:
		return -1
	default:
		return 0
	}
}

// Outcome returns the result of a finished game, or false while it is still in progress.
func (b Board) Outcome() (Outcome, bool) {
	winner, ok := b.Winner()
	switch {
	case ok && winner == PlayerX:
		return XWins, true
	case ok && winner == PlayerO:
		return OWins, true
	case b.full():
		return Draw, true
	default:
		return 0, false
	}
}

// Validate checks that the board can arise from legal play: X has the same number of marks
// as O or one more.
func (b Board) Validate() error {
	xCount, oCount := b.count()
	if diff := xCount - oCount; diff != 0 && diff != 1 {
		return fmt.Errorf("%w: %d X marks and %d O marks", apperror.ErrInvalidBoard, xCount, oCount)
	}

	return nil
}

// UnmarshalJSON accepts exactly BoardSize rows of BoardSize marks. A JSON null leaves the board untouched.
func (b *Board) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var rows [][]Mark
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}

	if len(rows) != BoardSize {
		return fmt.Errorf("%w: want %d rows, got %d", apperror.ErrInvalidBoard, BoardSize, len(rows))
	}

	for i, row := range rows {
		if len(row) != BoardSize {
			return fmt.Errorf("%w: row %d has %d cells, want %d", apperror.ErrInvalidBoard, i, len(row), BoardSize)
		}
	}

	for i, row := range rows {
		copy(b[i][:], row)
	}

	return nil
}

func (b Board) String() string {
	var sb strings.Builder
	for row := range b {
		for col, cell := range b[row] {
			if col > 0 {
				sb.WriteByte('|')
			}

			if cell == Empty {
				sb.WriteByte(' ')
			} else {
				sb.WriteString(cell.String())
			}
		}

		if row < BoardSize-1 {
			sb.WriteString("\n-+-+-\n")
		}
	}

	return sb.String()
}

func (b Board) hasLine(mark Mark) bool {
	for _, line := range winLines {
		if b[line[0].Row][line[0].Col] == mark &&
			b[line[1].Row][line[1].Col] == mark &&
			b[line[2].Row][line[2].Col] == mark {
			return true
		}
	}

	return false
}

func (b Board) full() bool {
	for row := range b {
		for col := range b[row] {
			if b[row][col] == Empty {
				return false
			}
		}
	}

	return true
}

func (b Board) count() (int, int) {
	var xCount, oCount int
	for row := range b {
		for _, cell := range b[row] {
			switch cell {
			case PlayerX:
				xCount++
			case PlayerO:
				oCount++
			}
		}
	}

	return xCount, oCount
}
