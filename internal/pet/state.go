// Package pet holds the virtual pet's state and the operations that mutate it.
// The state lives only in process memory; there is exactly one per Store.
package pet

import "time"

// Heart bounds and defaults.
const (
	MinHearts     = 0
	MaxHearts     = 6
	DefaultHearts = 3
)

// State is the pet's mood record.
type State struct {
	Hearts      int       `json:"hearts"`
	IsMuted     bool      `json:"isMuted"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// DefaultState returns the state a fresh or reset pet starts with.
func DefaultState(now time.Time) State {
	return State{
		Hearts:      DefaultHearts,
		IsMuted:     false,
		LastUpdated: now,
	}
}

// Update is a partial bulk update. Nil fields are left unchanged.
type Update struct {
	Hearts  *int  `json:"hearts,omitempty"`
	IsMuted *bool `json:"isMuted,omitempty"`
}

// Action names a mutation applied to the pet.
type Action string

const (
	ActionAddHeart    Action = "add_heart"
	ActionRemoveHeart Action = "remove_heart"
	ActionToggleMute  Action = "toggle_mute"
	ActionUpdate      Action = "update"
	ActionReset       Action = "reset"
)

// Change describes one successful mutation and the state it produced.
type Change struct {
	ID     string
	Action Action
	State  State
}
