package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-minimax/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/entity"
	"github.com/rocketscienceinc/tictactoe-minimax/internal/service"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func (m *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	return m.Called(ctx, game).Error(0)
}

func (m *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := m.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

// Update hands the game configured for id to apply, like the redis repository does after loading it.
func (m *mockGameRepo) Update(ctx context.Context, id string, apply func(game *entity.Game) error) (*entity.Game, error) {
	args := m.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	game, _ := args.Get(0).(*entity.Game)
	if err := apply(game); err != nil {
		return nil, err
	}

	return game, nil
}

func (m *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newTestManager(t *testing.T) (*GameManager, *mockGameRepo) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &mockGameRepo{}
	t.Cleanup(func() { repo.AssertExpectations(t) })

	return NewGameManager(logger, repo, service.NewBotService(logger)), repo
}

func gameWithBoard(board entity.Board, human entity.Mark) *entity.Game {
	game := &entity.Game{ID: "g1", Board: board, HumanMark: human, BotMark: human.Opponent()}
	game.Refresh()

	return game
}

func TestGameManager_CreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Human plays X", func(t *testing.T) {
		// Given: a repository that accepts the new game
		manager, repo := newTestManager(t)
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		// When: a game is created for X
		game, err := manager.CreateGame(ctx, entity.PlayerX)

		// Then: the board is empty and the human is on turn
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, entity.InitialState(), game.Board)
		assert.True(t, game.IsHumanTurn())
	})

	t.Run("Bot opens when the human plays O", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(nil).Once()

		game, err := manager.CreateGame(ctx, entity.PlayerO)

		require.NoError(t, err)
		assert.Len(t, game.Board.Actions(), 8)
		assert.True(t, game.IsHumanTurn())
	})

	t.Run("Invalid mark", func(t *testing.T) {
		manager, _ := newTestManager(t)

		game, err := manager.CreateGame(ctx, entity.Empty)

		require.ErrorIs(t, err, apperror.ErrInvalidMark)
		assert.Nil(t, game)
	})

	t.Run("Storage failure", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()

		game, err := manager.CreateGame(ctx, entity.PlayerX)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, game)
	})
}

func TestGameManager_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Bot replies to the human move", func(t *testing.T) {
		// Given: a fresh game where the human plays X
		manager, repo := newTestManager(t)
		game := gameWithBoard(entity.InitialState(), entity.PlayerX)
		repo.On("Update", ctx, "g1").Return(game, nil).Once()

		// When: the human plays the centre
		updated, err := manager.MakeTurn(ctx, "g1", entity.Action{Row: 1, Col: 1})

		// Then: the bot has answered and it is the human's turn again
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, updated.Board[1][1])
		assert.Len(t, updated.Board.Actions(), 7)
		assert.True(t, updated.IsHumanTurn())
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Winning move finishes the game without a bot reply", func(t *testing.T) {
		manager, repo := newTestManager(t)
		game := gameWithBoard(entity.Board{
			{entity.PlayerX, entity.PlayerX, entity.Empty},
			{entity.PlayerO, entity.PlayerO, entity.Empty},
			{entity.Empty, entity.Empty, entity.Empty},
		}, entity.PlayerX)
		repo.On("Update", ctx, "g1").Return(game, nil).Once()

		updated, err := manager.MakeTurn(ctx, "g1", entity.Action{Row: 0, Col: 2})

		require.NoError(t, err)
		assert.True(t, updated.IsFinished())
		assert.Equal(t, "X", updated.Winner)
		assert.Len(t, updated.Board.Actions(), 4)
	})

	t.Run("Illegal move is propagated", func(t *testing.T) {
		manager, repo := newTestManager(t)
		game := gameWithBoard(entity.Board{
			{entity.PlayerX, entity.Empty, entity.Empty},
			{entity.Empty, entity.PlayerO, entity.Empty},
			{entity.Empty, entity.Empty, entity.Empty},
		}, entity.PlayerX)
		repo.On("Update", ctx, "g1").Return(game, nil).Once()

		updated, err := manager.MakeTurn(ctx, "g1", entity.Action{Row: 1, Col: 1})

		require.ErrorIs(t, err, apperror.ErrIllegalMove)
		assert.Nil(t, updated)
	})

	t.Run("Finished game", func(t *testing.T) {
		manager, repo := newTestManager(t)
		game := gameWithBoard(entity.Board{
			{entity.PlayerX, entity.PlayerX, entity.PlayerX},
			{entity.PlayerO, entity.PlayerO, entity.Empty},
			{entity.Empty, entity.Empty, entity.Empty},
		}, entity.PlayerO)
		repo.On("Update", ctx, "g1").Return(game, nil).Once()

		_, err := manager.MakeTurn(ctx, "g1", entity.Action{Row: 1, Col: 2})

		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Not the human's turn", func(t *testing.T) {
		manager, repo := newTestManager(t)
		game := gameWithBoard(entity.InitialState(), entity.PlayerO)
		repo.On("Update", ctx, "g1").Return(game, nil).Once()

		_, err := manager.MakeTurn(ctx, "g1", entity.Action{Row: 0, Col: 0})

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Unknown game", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("Update", ctx, "nope").Return(nil, apperror.ErrGameNotFound).Once()

		game, err := manager.MakeTurn(ctx, "nope", entity.Action{})

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, game)
	})

	t.Run("Lost race is reported", func(t *testing.T) {
		// Given: a repository that kept losing the write to other requests
		manager, repo := newTestManager(t)
		repo.On("Update", ctx, "g1").Return(nil, apperror.ErrConcurrentUpdate).Once()

		// When: the human plays
		game, err := manager.MakeTurn(ctx, "g1", entity.Action{})

		// Then: the conflict reaches the caller
		require.ErrorIs(t, err, apperror.ErrConcurrentUpdate)
		assert.Nil(t, game)
	})

	t.Run("Human can never beat the bot", func(t *testing.T) {
		// Given: a human who always plays the first free cell
		manager, repo := newTestManager(t)
		game := gameWithBoard(entity.InitialState(), entity.PlayerX)
		repo.On("Update", ctx, "g1").Return(game, nil)

		// When: the match is played to the end
		for !game.IsFinished() {
			_, err := manager.MakeTurn(ctx, "g1", game.Board.Actions()[0])
			require.NoError(t, err)
		}

		// Then: the bot won or drew
		assert.NotEqual(t, "X", game.Winner)
	})
}

func TestGameManager_DeleteGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the game", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("DeleteByID", ctx, "g1").Return(nil).Once()

		require.NoError(t, manager.DeleteGame(ctx, "g1"))
	})

	t.Run("Unknown game", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("DeleteByID", ctx, "g1").Return(apperror.ErrGameNotFound).Once()

		err := manager.DeleteGame(ctx, "g1")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
