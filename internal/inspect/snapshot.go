// Package inspect serves read-only JSON snapshots of the studio renderer
// state over HTTP.
package inspect

import (
	"sort"

	"github.com/Faultbox/studiorender/internal/engine/shadow"
	"github.com/Faultbox/studiorender/internal/engine/studiorender"
	"github.com/Faultbox/studiorender/internal/game/entity"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// Entity is the published state of one entity.
type Entity struct {
	Index       int          `json:"index"`
	Model       int          `json:"model"`
	ModelName   string       `json:"model_name,omitempty"`
	Sequence    int          `json:"sequence"`
	SeqLabel    string       `json:"sequence_label,omitempty"`
	Frame       float32      `json:"frame"`
	Body        int32        `json:"body"`
	RenderMode  int32        `json:"render_mode"`
	RenderFx    int32        `json:"render_fx"`
	Origin      [3]float32   `json:"origin"`
	Angles      [3]float32   `json:"angles"`
	Attachments [][3]float32 `json:"attachments,omitempty"`
}

// Model is the published summary of a loaded model.
type Model struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Bones       int    `json:"bones"`
	Sequences   int    `json:"sequences"`
	BodyParts   int    `json:"bodyparts"`
	Attachments int    `json:"attachments"`
	ShadowFaces int    `json:"shadow_faces"`
	ShadowEdges int    `json:"shadow_edges"`
}

// Shadows is the published shadow caster state.
type Shadows struct {
	Enabled bool           `json:"enabled"`
	Volumes int            `json:"volumes"`
	Polys   int            `json:"polys"`
	Skips   map[string]int `json:"skips,omitempty"`
}

// Snapshot is everything published for one frame.
type Snapshot struct {
	Frame    int                `json:"frame"`
	Time     float64            `json:"time"`
	Render   studiorender.Stats `json:"render"`
	Shadows  Shadows            `json:"shadows"`
	Entities []Entity           `json:"entities"`
	Models   []Model            `json:"models"`
}

// EntityOf captures e, resolving its model through models.
func EntityOf(e *entity.Entity, models func(int) *studio.Model) Entity {
	out := Entity{
		Index:      e.Index,
		Model:      e.Model,
		Sequence:   e.Cur.Sequence,
		Frame:      e.Cur.Frame,
		Body:       e.Cur.Body,
		RenderMode: int32(e.Cur.RenderMode),
		RenderFx:   int32(e.Cur.RenderFx),
		Origin:     e.Origin,
		Angles:     e.Angles,
	}
	if m := models(e.Model); m != nil {
		out.ModelName = m.Header.Name
		if seq := m.Sequence(e.Cur.Sequence); seq != nil {
			out.SeqLabel = seq.Label
		}
		for i := range m.Attachments {
			if i >= len(e.Attachments) {
				break
			}
			out.Attachments = append(out.Attachments, e.Attachments[i])
		}
	}
	return out
}

// Entities captures all entities ordered by index.
func Entities(ents []*entity.Entity, models func(int) *studio.Model) []Entity {
	out := make([]Entity, 0, len(ents))
	for _, e := range ents {
		out = append(out, EntityOf(e, models))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ModelOf summarizes m, including its shadow topology when store has it.
func ModelOf(index int, m *studio.Model, store *shadow.Store) Model {
	out := Model{
		Index:       index,
		Name:        m.Header.Name,
		Bones:       len(m.Bones),
		Sequences:   len(m.Sequences),
		BodyParts:   len(m.BodyParts),
		Attachments: len(m.Attachments),
	}
	if store != nil {
		if t, ok := store.Lookup(shadow.ModelName(m)); ok {
			out.ShadowFaces = t.Faces()
			out.ShadowEdges = t.Edges()
		}
	}
	return out
}

// ShadowsOf captures the caster counters.
func ShadowsOf(c *shadow.Caster) Shadows {
	s := c.Stats()
	out := Shadows{Enabled: c.Enabled(), Volumes: s.Volumes, Polys: s.Polys}
	if len(s.Skips) > 0 {
		out.Skips = make(map[string]int, len(s.Skips))
		for k, v := range s.Skips {
			out.Skips[k.String()] = v
		}
	}
	return out
}
