package skeleton

import (
	"strings"

	"github.com/Faultbox/studiorender/internal/engine/anim"
	"github.com/Faultbox/studiorender/pkg/math"
	"github.com/Faultbox/studiorender/pkg/studio"
)

// Cache keeps the last composed skeleton so an attached model can reuse the
// transforms of bones it shares by name.
type Cache struct {
	names []string
	bone  []math.Mat34
	light []math.Mat34
}

// Save snapshots the transforms of bones.
func (c *Cache) Save(bones []studio.Bone, t *Transforms) {
	c.names = c.names[:0]
	c.bone = c.bone[:0]
	c.light = c.light[:0]
	for i := range bones {
		c.names = append(c.names, bones[i].Name)
		c.bone = append(c.bone, t.Bone[i])
		c.light = append(c.light, t.Light[i])
	}
}

// Len returns the number of cached bones.
func (c *Cache) Len() int {
	return len(c.names)
}

// Names returns the cached bone names.
func (c *Cache) Names() []string {
	return c.names
}

// Lookup returns the cached index of name, compared without case, or -1.
func (c *Cache) Lookup(name string) int {
	for j, n := range c.names {
		if strings.EqualFold(n, name) {
			return j
		}
	}
	return -1
}

// Merge composes bones onto the cached skeleton: bones found in the cache copy
// its transforms, the rest are composed from the pose. Root bones are never
// mirrored here.
func (c *Cache) Merge(dst *Transforms, bones []studio.Bone, p *anim.Pose, root Root) {
	root.Mirror = false
	dst.Reset(len(bones))
	for i := range bones {
		if j := c.Lookup(bones[i].Name); j >= 0 {
			dst.Bone[i] = c.bone[j]
			dst.Light[i] = c.light[j]
			continue
		}
		composeBone(dst, bones, p, i, root)
	}
}
