package studiorender

// FreezeMask selects view model animation categories held at their first
// frame.
type FreezeMask int

const (
	FreezeIdle FreezeMask = 1 << iota
	FreezeEquip
	FreezeShoot
	FreezeReload
)

// Options are the renderer tunables.
type Options struct {
	Interpolate bool
	PlayerGait  bool

	// GaitFromVelocity measures player movement from the replicated
	// velocity instead of the origin delta between frames.
	GaitFromVelocity bool

	ViewModelFreeze FreezeMask
	RightHand       bool    // Mirror the view model into the right hand
	ViewModelFOV    float32 // 0 draws the view model with the world FOV
	DefaultFOV      float32

	Developer    int
	HiModels     bool
	DrawEntities int // 2 bones, 3 hulls, 4 hulls over model, 5 bounding box
}

// DefaultOptions returns the stock settings.
func DefaultOptions() Options {
	return Options{
		Interpolate: true,
		PlayerGait:  true,
		RightHand:   true,
		DefaultFOV:  90,
	}
}

// Stats counts draws since the last reset.
type Stats struct {
	ModelsDrawn int
	Players     int
	Merged      int
}
