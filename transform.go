package dreki

import "github.com/go-gl/mathgl/mgl32"

// Transform is the local position, rotation, and scale of an entity. It works
// for both 2D and 3D — 2D entities ignore the Z axis.
//
// The zero value is NOT a usable transform (zero scale, zero rotation); build
// one with TransformIdentity or the From constructors.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// TransformIdentity returns the identity transform: origin, no rotation,
// uniform scale of 1.
func TransformIdentity() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// TransformFromXYZ returns an identity transform at the given position.
func TransformFromXYZ(x, y, z float32) Transform {
	t := TransformIdentity()
	t.Translation = mgl32.Vec3{x, y, z}
	return t
}

// TransformFromXY returns an identity transform at the given 2D position
// (z = 0).
func TransformFromXY(x, y float32) Transform {
	return TransformFromXYZ(x, y, 0)
}

// WithScale returns a copy with a uniform scale applied.
func (t Transform) WithScale(scale float32) Transform {
	t.Scale = mgl32.Vec3{scale, scale, scale}
	return t
}

// Matrix computes the 4x4 model matrix: translate * rotate * scale.
func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}
