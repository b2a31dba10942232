package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-pet/internal/pet"
	"github.com/vovakirdan/tui-pet/internal/storage"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service is the pet store as seen by the handlers.
type Service interface {
	State() pet.State
	AddHeart() (pet.State, error)
	RemoveHeart() (pet.State, error)
	ToggleMute() pet.State
	Apply(u pet.Update) (pet.State, error)
	Reset() pet.State
}

// HistorySource lists journaled changes, newest first.
type HistorySource interface {
	RecentChanges(limit int) ([]storage.ChangeEntry, error)
}

var _ Service = (*pet.Store)(nil)

// Handler serves the pet API.
type Handler struct {
	svc     Service
	history HistorySource
	logger  *log.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHistory enables the history endpoint.
func WithHistory(src HistorySource) HandlerOption {
	return func(h *Handler) {
		h.history = src
	}
}

// NewHandler creates a handler backed by svc.
func NewHandler(svc Service, logger *log.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetState returns the current state.
func (h *Handler) GetState(w http.ResponseWriter, _ *http.Request) {
	writeData(w, h.svc.State(), "")
}

// AddHeart adds one heart.
func (h *Handler) AddHeart(w http.ResponseWriter, _ *http.Request) {
	st, err := h.svc.AddHeart()
	if err != nil {
		h.writeStateError(w, err)
		return
	}
	writeData(w, st, "Heart added successfully")
}

// RemoveHeart removes one heart.
func (h *Handler) RemoveHeart(w http.ResponseWriter, _ *http.Request) {
	st, err := h.svc.RemoveHeart()
	if err != nil {
		h.writeStateError(w, err)
		return
	}
	writeData(w, st, "Heart removed successfully")
}

// ToggleAudio flips the muted flag.
func (h *Handler) ToggleAudio(w http.ResponseWriter, _ *http.Request) {
	st := h.svc.ToggleMute()
	verb := "unmuted"
	if st.IsMuted {
		verb = "muted"
	}
	writeData(w, st, "Audio "+verb+" successfully")
}

// UpdateState applies a partial update from the request body.
// An empty body is an empty update.
func (h *Handler) UpdateState(w http.ResponseWriter, r *http.Request) {
	u, err := decodeUpdate(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if errors.Is(err, pet.ErrBoundary) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	st, err := h.svc.Apply(u)
	if err != nil {
		h.writeStateError(w, err)
		return
	}
	writeData(w, st, "Game state updated successfully")
}

// Reset restores the defaults.
func (h *Handler) Reset(w http.ResponseWriter, _ *http.Request) {
	writeData(w, h.svc.Reset(), "Game state reset successfully")
}

// History lists recent journal entries. ?limit=N, default 20, capped at 100.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, msgInvalidLimit)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	entries, err := h.history.RecentChanges(limit)
	if err != nil {
		h.logger.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if entries == nil {
		entries = []storage.ChangeEntry{}
	}
	writeData(w, entries, "")
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Envelope[struct{}]{Success: true, Message: "ok"})
}

func (h *Handler) writeStateError(w http.ResponseWriter, err error) {
	if errors.Is(err, pet.ErrBoundary) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("state operation failed", "error", err)
	writeError(w, http.StatusInternalServerError, msgInternalError)
}

// updateBody keeps hearts raw so numbers too large for an int are reported
// as out of range rather than as a malformed body.
type updateBody struct {
	Hearts  json.RawMessage `json:"hearts"`
	IsMuted *bool           `json:"isMuted"`
}

func decodeUpdate(body io.Reader) (pet.Update, error) {
	var b updateBody
	dec := json.NewDecoder(body)
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return pet.Update{}, nil
		}
		return pet.Update{}, err
	}
	// Reject trailing data after the object.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return pet.Update{}, errors.New("unexpected data after JSON object")
	}

	hearts, err := parseHearts(b.Hearts)
	if err != nil {
		return pet.Update{}, err
	}
	return pet.Update{Hearts: hearts, IsMuted: b.IsMuted}, nil
}

// parseHearts accepts integral JSON numbers. null or a missing field means absent.
func parseHearts(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return nil, fmt.Errorf("hearts must be a number, got %s", raw)
	}

	num := json.Number(raw)
	if n, err := num.Int64(); err == nil {
		if n < pet.MinHearts || n > pet.MaxHearts {
			return nil, pet.RangeError(saturate(float64(n)))
		}
		h := int(n)
		return &h, nil
	}

	f, err := num.Float64()
	if errors.Is(err, strconv.ErrRange) {
		return nil, pet.RangeError(saturate(f))
	}
	if err != nil {
		return nil, err
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("hearts must be a whole number, got %s", raw)
	}
	if f < pet.MinHearts || f > pet.MaxHearts {
		return nil, pet.RangeError(saturate(f))
	}
	h := int(f)
	return &h, nil
}

func saturate(f float64) int {
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(f)
}
