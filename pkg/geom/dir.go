package geom

import "github.com/go-gl/mathgl/mgl32"

// RotateDir rotates d by the upper-left 3x3 of m, ignoring translation.
func RotateDir(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	return m.Mat3().Mul3x1(d)
}

// NormalizeSafe normalizes v, returning fallback for zero-length input.
func NormalizeSafe(v, fallback mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-6 {
		return fallback
	}
	return v.Normalize()
}

// TransformPoint applies m to p with w = 1.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}
