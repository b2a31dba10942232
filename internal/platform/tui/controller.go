package tui

import (
	"context"
	"errors"

	"github.com/vovakirdan/tui-pet/internal/client"
	"github.com/vovakirdan/tui-pet/internal/pet"
	"github.com/vovakirdan/tui-pet/internal/storage"
)

// ErrNoHistory is returned when the journal is not available.
var ErrNoHistory = errors.New("history is not available")

// Controller is what the control panel drives. It is implemented both
// in-process (SSH sessions share the server's store) and over HTTP.
type Controller interface {
	GetState(ctx context.Context) (pet.State, error)
	AddHeart(ctx context.Context) (pet.State, error)
	RemoveHeart(ctx context.Context) (pet.State, error)
	ToggleAudio(ctx context.Context) (pet.State, error)
	Reset(ctx context.Context) (pet.State, error)
	History(ctx context.Context, limit int) ([]storage.ChangeEntry, error)
}

// HistorySource lists journaled changes, newest first.
type HistorySource interface {
	RecentChanges(limit int) ([]storage.ChangeEntry, error)
}

// LocalController drives a pet.Store directly.
type LocalController struct {
	Store   *pet.Store
	Journal HistorySource // optional
}

func (c LocalController) GetState(context.Context) (pet.State, error) {
	return c.Store.State(), nil
}

func (c LocalController) AddHeart(context.Context) (pet.State, error) {
	return c.Store.AddHeart()
}

func (c LocalController) RemoveHeart(context.Context) (pet.State, error) {
	return c.Store.RemoveHeart()
}

func (c LocalController) ToggleAudio(context.Context) (pet.State, error) {
	return c.Store.ToggleMute(), nil
}

func (c LocalController) Reset(context.Context) (pet.State, error) {
	return c.Store.Reset(), nil
}

func (c LocalController) History(_ context.Context, limit int) ([]storage.ChangeEntry, error) {
	if c.Journal == nil {
		return nil, ErrNoHistory
	}
	return c.Journal.RecentChanges(limit)
}

// RemoteController drives a pet server through the HTTP client.
type RemoteController struct {
	Client *client.Client
}

func (c RemoteController) GetState(ctx context.Context) (pet.State, error) {
	return stateOf(c.Client.GetState(ctx))
}

func (c RemoteController) AddHeart(ctx context.Context) (pet.State, error) {
	return stateOf(c.Client.AddHeart(ctx))
}

func (c RemoteController) RemoveHeart(ctx context.Context) (pet.State, error) {
	return stateOf(c.Client.RemoveHeart(ctx))
}

func (c RemoteController) ToggleAudio(ctx context.Context) (pet.State, error) {
	return stateOf(c.Client.ToggleAudio(ctx))
}

func (c RemoteController) Reset(ctx context.Context) (pet.State, error) {
	return stateOf(c.Client.Reset(ctx))
}

func (c RemoteController) History(ctx context.Context, limit int) ([]storage.ChangeEntry, error) {
	entries, err := c.Client.History(ctx, limit)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == 404 {
		return nil, ErrNoHistory
	}
	return entries, err
}

func stateOf(res client.Result, err error) (pet.State, error) {
	return res.State, err
}

// errorText turns an error into a message fit for the status line.
func errorText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var be *pet.BoundaryError
	if errors.As(err, &be) {
		return be.Reason
	}
	return err.Error()
}
