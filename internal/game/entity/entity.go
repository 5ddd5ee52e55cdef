// Package entity holds the per-entity state the studio renderer reads and
// updates each frame: the replicated state, latched previous values used for
// interpolation, and per-player gait data.
package entity

import (
	"github.com/Faultbox/studiorender/pkg/math"
)

// MoveType is the entity movement mode.
type MoveType int32

const (
	MoveNone   MoveType = 0
	MoveWalk   MoveType = 3
	MoveStep   MoveType = 4
	MoveFly    MoveType = 5
	MoveFollow MoveType = 12
)

// RenderMode selects blending for the whole model.
type RenderMode int32

const (
	RenderNormal     RenderMode = 0
	RenderTransColor RenderMode = 1
	RenderTransTex   RenderMode = 2
	RenderGlow       RenderMode = 3
	RenderTransAlpha RenderMode = 4
	RenderTransAdd   RenderMode = 5
)

// RenderFx selects a per-entity visual effect.
type RenderFx int32

const (
	FxNone       RenderFx = 0
	FxDistort    RenderFx = 15
	FxHologram   RenderFx = 16
	FxDeadPlayer RenderFx = 17
	FxExplode    RenderFx = 18
	FxGlowShell  RenderFx = 19
)

// State is the replicated state of an entity for the current update.
type State struct {
	Number   int // Entity number; players are 1..MaxClients
	Origin   math.Vec3
	Angles   math.Vec3
	Velocity math.Vec3
	MoveType MoveType
	AnimTime float64 // Time the frame value was set

	// Animation
	Sequence     int
	Frame        float32 // 0..255 across the sequence
	FrameRate    float32
	Controller   [4]uint8
	Blending     [2]uint8
	GaitSequence int

	// Visual
	Body        int32
	Skin        int32
	ColorMap    int32 // Top color in the low byte, bottom in the next
	RenderMode  RenderMode
	RenderFx    RenderFx
	RenderAmt   int32
	WeaponModel int // Model index, 0 for none
}

// Latched holds values from the previous update used to smooth the current one.
type Latched struct {
	PrevAnimTime    float64
	SequenceTime    float64 // Time of the last sequence change, 0 if never
	PrevOrigin      math.Vec3
	PrevAngles      math.Vec3
	PrevSequence    int
	PrevFrame       float64
	PrevController  [4]uint8
	PrevBlending    [2]uint8
	PrevSeqBlending [2]uint8
}

// Entity is a renderable studio model instance.
type Entity struct {
	Index int
	Model int // Model index in the host's registry

	Cur     State
	Latched Latched

	// Interpolated origin and angles for this frame.
	Origin math.Vec3
	Angles math.Vec3

	MouthOpen     uint8
	TrivialAccept bool
	Attachments   [4]math.Vec3
}

// NewEntity creates an entity for model at origin.
func NewEntity(index, model int, origin math.Vec3) *Entity {
	e := &Entity{
		Index:  index,
		Model:  model,
		Origin: origin,
	}
	e.Cur.Number = index
	e.Cur.Origin = origin
	e.Cur.FrameRate = 1
	e.Latched.PrevOrigin = origin
	return e
}

// SetSequence switches to seq at now, latching the outgoing sequence and
// blend values for the transition window.
func (e *Entity) SetSequence(seq int, now float64) {
	if seq == e.Cur.Sequence {
		return
	}
	e.Latched.PrevSequence = e.Cur.Sequence
	e.Latched.SequenceTime = now
	e.Latched.PrevSeqBlending = e.Cur.Blending
	e.Cur.Sequence = seq
	e.Cur.Frame = 0
	e.Cur.AnimTime = now
}

// Update applies a new replicated state at now, latching the previous values.
func (e *Entity) Update(next State, now float64) {
	if next.Sequence != e.Cur.Sequence {
		e.Latched.PrevSequence = e.Cur.Sequence
		e.Latched.SequenceTime = now
		e.Latched.PrevSeqBlending = e.Cur.Blending
	}
	e.Latched.PrevAnimTime = e.Cur.AnimTime
	e.Latched.PrevOrigin = e.Cur.Origin
	e.Latched.PrevAngles = e.Cur.Angles
	e.Latched.PrevController = e.Cur.Controller
	e.Latched.PrevBlending = e.Cur.Blending

	e.Cur = next
	e.Origin = next.Origin
	e.Angles = next.Angles
}

// Manager owns the entities and player slots of the scene.
type Manager struct {
	entities   map[int]*Entity
	players    []State
	info       []PlayerInfo
	viewModel  *Entity
	maxClients int
}

// NewManager creates a manager with maxClients player slots.
func NewManager(maxClients int) *Manager {
	return &Manager{
		entities:   make(map[int]*Entity),
		players:    make([]State, maxClients),
		info:       make([]PlayerInfo, maxClients),
		maxClients: maxClients,
	}
}

// Add adds an entity.
func (m *Manager) Add(e *Entity) {
	m.entities[e.Index] = e
}

// Remove removes an entity.
func (m *Manager) Remove(index int) {
	delete(m.entities, index)
}

// Get returns an entity by index.
func (m *Manager) Get(index int) *Entity {
	return m.entities[index]
}

// All returns all entities.
func (m *Manager) All() []*Entity {
	result := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		result = append(result, e)
	}
	return result
}

// Count returns the total number of entities.
func (m *Manager) Count() int {
	return len(m.entities)
}

// MaxClients returns the number of player slots.
func (m *Manager) MaxClients() int {
	return m.maxClients
}

// SetViewModel sets the first-person weapon entity.
func (m *Manager) SetViewModel(e *Entity) {
	m.viewModel = e
}

// ViewModel returns the first-person weapon entity, or nil.
func (m *Manager) ViewModel() *Entity {
	return m.viewModel
}

// PlayerState returns the replicated state of player slot i (0-based).
func (m *Manager) PlayerState(i int) *State {
	if i < 0 || i >= len(m.players) {
		return nil
	}
	return &m.players[i]
}

// PlayerInfo returns the extended info of player slot i (0-based).
func (m *Manager) PlayerInfo(i int) *PlayerInfo {
	if i < 0 || i >= len(m.info) {
		return nil
	}
	return &m.info[i]
}

// Clear removes all entities and resets player slots.
func (m *Manager) Clear() {
	m.entities = make(map[int]*Entity)
	m.players = make([]State, m.maxClients)
	m.info = make([]PlayerInfo, m.maxClients)
	m.viewModel = nil
}
