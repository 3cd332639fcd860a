package contour

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/moulded/vecmath"
)

// qefSample is one surface crossing contributing a half-space constraint
// n . (x - p) = 0 to the quadratic error function.
type qefSample struct {
	point, normal vecmath.Vec3
}

// solveQEF finds the point minimizing the sum of squared plane distances
// implied by samples, via the 3x3 normal-equations solve A^T A x = A^T b.
// Returns ok=false if the system is (near) singular, in which case the
// caller should fall back to Newton projection.
func solveQEF(samples []qefSample) (vecmath.Vec3, bool) {
	if len(samples) == 0 {
		return vecmath.Vec3{}, false
	}

	a := mat.NewDense(3, 3, nil)
	b := mat.NewVecDense(3, nil)

	for _, s := range samples {
		n := []float64{s.normal.X, s.normal.Y, s.normal.Z}
		d := n[0]*s.point.X + n[1]*s.point.Y + n[2]*s.point.Z
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				a.Set(i, j, a.At(i, j)+n[i]*n[j])
			}
			b.SetVec(i, b.AtVec(i)+n[i]*d)
		}
	}

	// Regularize slightly; the QEF is often rank-deficient when all
	// samples share (nearly) the same normal, e.g. a flat patch.
	for i := 0; i < 3; i++ {
		a.Set(i, i, a.At(i, i)+1e-6)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return vecmath.Vec3{}, false
	}
	return vecmath.Vec3{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}, true
}
