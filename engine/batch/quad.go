package batch

import (
	"github.com/Carmen-Shannon/oxy-batch/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// Quad is one axis-aligned textured rectangle to draw. It is a value: the batch copies what it needs and
// keeps only the (borrowed) texture reference.
type Quad struct {
	// Texture is the texture sampled by the quad. It is borrowed and must outlive the frame.
	Texture texture.Texture
	// Position is the bottom-left corner; Z is carried unchanged to all four vertices.
	Position mgl32.Vec3
	// Size is the width and height of the quad.
	Size mgl32.Vec2
	// TexCoords is the texture rectangle as (u0, v0, u1, v1).
	TexCoords mgl32.Vec4
}

// FullTexCoords samples the whole texture upright: the bottom edge of the quad maps to the bottom image row.
var FullTexCoords = mgl32.Vec4{0, 1, 1, 0}

// Corners returns the quad's vertex positions in the fixed order bottom-left, bottom-right, top-right,
// top-left.
//
// Returns:
//   - [4]mgl32.Vec3: the corner positions
func (q Quad) Corners() [4]mgl32.Vec3 {
	p := q.Position
	return [4]mgl32.Vec3{
		{p.X(), p.Y(), p.Z()},
		{p.X() + q.Size.X(), p.Y(), p.Z()},
		{p.X() + q.Size.X(), p.Y() + q.Size.Y(), p.Z()},
		{p.X(), p.Y() + q.Size.Y(), p.Z()},
	}
}

// CornerTexCoords returns the texture coordinates matching Corners: (u0,v0), (u1,v0), (u1,v1), (u0,v1).
//
// Returns:
//   - [4]mgl32.Vec2: the per-corner texture coordinates
func (q Quad) CornerTexCoords() [4]mgl32.Vec2 {
	u0, v0, u1, v1 := q.TexCoords[0], q.TexCoords[1], q.TexCoords[2], q.TexCoords[3]
	return [4]mgl32.Vec2{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}}
}
