// Package vecmath provides the vector and rotation primitives shared by
// the sdf, skeleton, mould, grid, brick and contour packages.
package vecmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or direction in world space. Internal math stays in
// float64; narrowing to float32 only happens at the mesh wire boundary.
type Vec3 = r3.Vec

// Zero is the additive identity.
var Zero = Vec3{}

// Add returns a+b.
func Add(a, b Vec3) Vec3 { return r3.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec3) Vec3 { return r3.Sub(a, b) }

// Scale returns v scaled by s.
func Scale(s float64, v Vec3) Vec3 { return r3.Scale(s, v) }

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float64 { return r3.Dot(a, b) }

// Cross returns the cross product of a and b.
func Cross(a, b Vec3) Vec3 { return r3.Cross(a, b) }

// Norm returns the Euclidean length of v.
func Norm(v Vec3) float64 { return r3.Norm(v) }

// Normalize returns v scaled to unit length. Returns the zero vector if
// v is (near) zero length, matching the source's degenerate handling.
func Normalize(v Vec3) Vec3 {
	n := Norm(v)
	if n < 1e-12 {
		return Zero
	}
	return Scale(1/n, v)
}

// Clamp01 clamps x to [0,1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Quat is a unit rotation quaternion.
type Quat = quat.Number

// Identity is the identity rotation.
var Identity = Quat{Real: 1}

// RotateVec rotates v by q.
func RotateVec(q Quat, v Vec3) Vec3 {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return Vec3{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// MulQuat composes rotations: applying the result rotates first by b,
// then by a.
func MulQuat(a, b Quat) Quat { return quat.Mul(a, b) }

// ConjQuat returns the conjugate (inverse, for unit quaternions) of q.
func ConjQuat(q Quat) Quat { return quat.Conj(q) }

// NormalizeQuat returns q scaled to unit length.
func NormalizeQuat(q Quat) Quat {
	n := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if n < 1e-12 {
		return Identity
	}
	inv := 1 / n
	return Quat{Real: q.Real * inv, Imag: q.Imag * inv, Jmag: q.Jmag * inv, Kmag: q.Kmag * inv}
}

// AngleBetween returns the rotation angle (radians, in [0, pi]) between
// two unit quaternions, used by the skeleton's moved-joint detection.
func AngleBetween(a, b Quat) float64 {
	rel := MulQuat(ConjQuat(a), b)
	rel = NormalizeQuat(rel)
	w := rel.Real
	if w > 1 {
		w = 1
	}
	if w < -1 {
		w = -1
	}
	return 2 * math.Acos(math.Abs(w))
}

// Transform is a rigid transform: rotate then translate.
type Transform struct {
	Translation Vec3
	Rotation    Quat
}

// IdentityTransform is the identity rigid transform.
var IdentityTransform = Transform{Rotation: Identity}

// Apply maps a local-space point into the space this transform describes.
func (t Transform) Apply(p Vec3) Vec3 {
	return Add(RotateVec(t.Rotation, p), t.Translation)
}

// ApplyDirection rotates (but does not translate) a direction vector.
func (t Transform) ApplyDirection(v Vec3) Vec3 {
	return RotateVec(t.Rotation, v)
}

// Compose returns the transform equivalent to applying child first, then
// parent — i.e. parent.Compose(child) maps child-local points into
// parent's parent space.
func (parent Transform) Compose(child Transform) Transform {
	return Transform{
		Translation: parent.Apply(child.Translation),
		Rotation:    MulQuat(parent.Rotation, child.Rotation),
	}
}

// Inverse returns the inverse rigid transform.
func (t Transform) Inverse() Transform {
	invRot := ConjQuat(t.Rotation)
	return Transform{
		Rotation:    invRot,
		Translation: Scale(-1, RotateVec(invRot, t.Translation)),
	}
}

// OrthonormalFrame builds a right-handed frame (tangent, normal, binormal)
// from a bone axis, used to sample a ProfiledCapsule's ring profile in a
// stable local basis regardless of the bone's world orientation.
func OrthonormalFrame(axis Vec3) (tangent, normal, binormal Vec3) {
	tangent = Normalize(axis)
	up := Vec3{X: 0, Y: 1, Z: 0}
	if math.Abs(Dot(tangent, up)) > 0.999 {
		up = Vec3{X: 1, Y: 0, Z: 0}
	}
	normal = Normalize(Cross(up, tangent))
	binormal = Cross(tangent, normal)
	return tangent, normal, binormal
}
