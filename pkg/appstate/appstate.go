// Package appstate holds client session and per-module request state as a
// pure reducer: transitions are functions of (state, action) with no I/O,
// so the UI layer can replay and test them deterministically. Persistence
// is a side effect applied by Store around the reducer, through a small
// storage port.
package appstate

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Status is the lifecycle of one module's in-flight request.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Module identifies an independent request slice.
type Module string

const (
	ModuleAuth             Module = "auth"
	ModuleWriting          Module = "writing"
	ModuleSoundDesign      Module = "soundDesign"
	ModuleChordProgression Module = "chordProgression"
	ModuleDrawing          Module = "drawing"
)

// User is the session identity.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ModuleState is one module's slice: request status plus the last result
// or error message.
type ModuleState struct {
	Status Status
	Result string
	Error  string
}

// State is the whole container. The zero value is not ready; use NewState.
type State struct {
	Authenticated bool
	User          User
	Token         string
	Modules       map[Module]ModuleState
}

// NewState returns the initial anonymous state with every module idle.
func NewState() State {
	return State{Modules: map[Module]ModuleState{
		ModuleAuth:             {Status: StatusIdle},
		ModuleWriting:          {Status: StatusIdle},
		ModuleSoundDesign:      {Status: StatusIdle},
		ModuleChordProgression: {Status: StatusIdle},
		ModuleDrawing:          {Status: StatusIdle},
	}}
}

// ActionType discriminates Action payloads.
type ActionType string

const (
	ActionRequestStarted   ActionType = "request/started"
	ActionRequestSucceeded ActionType = "request/succeeded"
	ActionRequestFailed    ActionType = "request/failed"
	ActionLogin            ActionType = "auth/login"
	ActionLogout           ActionType = "auth/logout"
	ActionRestore          ActionType = "auth/restore"
)

// Action is a dispatched event. Module applies to the request actions;
// User/Token apply to the auth actions.
type Action struct {
	Type   ActionType
	Module Module
	Result string
	Error  string
	User   User
	Token  string
}

// Reduce applies one action and returns the next state. The input state is
// never mutated.
func Reduce(s State, a Action) State {
	next := s
	next.Modules = make(map[Module]ModuleState, len(s.Modules))
	for m, ms := range s.Modules {
		next.Modules[m] = ms
	}

	switch a.Type {
	case ActionRequestStarted:
		next.Modules[a.Module] = ModuleState{Status: StatusLoading}
	case ActionRequestSucceeded:
		next.Modules[a.Module] = ModuleState{Status: StatusSuccess, Result: a.Result}
	case ActionRequestFailed:
		next.Modules[a.Module] = ModuleState{Status: StatusError, Error: a.Error}
	case ActionLogin, ActionRestore:
		next.Authenticated = true
		next.User = a.User
		next.Token = a.Token
		next.Modules[ModuleAuth] = ModuleState{Status: StatusSuccess}
	case ActionLogout:
		next.Authenticated = false
		next.User = User{}
		next.Token = ""
		next.Modules[ModuleAuth] = ModuleState{Status: StatusIdle}
	}
	return next
}

// Storage is the persistence port backing the session across restarts.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

const (
	tokenKey = "auth.token"
	userKey  = "auth.user"
)

// Store pairs the reducer with a Storage, persisting the session on login
// and clearing it on logout. Restore never writes.
type Store struct {
	state   State
	storage Storage
}

// NewStore builds a store over the given storage port.
func NewStore(storage Storage) *Store {
	return &Store{state: NewState(), storage: storage}
}

// State returns the current state.
func (st *Store) State() State { return st.state }

// Dispatch reduces the action and applies its persistence side effect.
// Login writes the token and serialized user; logout removes both;
// restore and all other actions leave storage untouched.
func (st *Store) Dispatch(a Action) State {
	st.state = Reduce(st.state, a)

	if st.storage != nil {
		switch a.Type {
		case ActionLogin:
			st.storage.Set(tokenKey, a.Token)
			if data, err := marshalUser(a.User); err == nil {
				st.storage.Set(userKey, data)
			}
		case ActionLogout:
			st.storage.Remove(tokenKey)
			st.storage.Remove(userKey)
		}
	}
	return st.state
}

// marshalUser serializes the user verbatim: stored profile fields stay raw
// strings, never HTML-escaped. Display safety is the renderer's job.
func marshalUser(u User) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(u); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Restore loads a previously persisted session, if any, and dispatches a
// restore action. Returns true when a session was found.
func (st *Store) Restore() bool {
	if st.storage == nil {
		return false
	}
	token, ok := st.storage.Get(tokenKey)
	if !ok || token == "" {
		return false
	}
	var user User
	if raw, ok := st.storage.Get(userKey); ok {
		// A corrupt user entry still restores the token; identity
		// fields just come back empty.
		_ = json.Unmarshal([]byte(raw), &user)
	}
	st.Dispatch(Action{Type: ActionRestore, User: user, Token: token})
	return true
}
