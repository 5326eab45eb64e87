package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustum extracts frustum planes from a view-projection matrix using the Gribb/Hartmann
// method. The near plane uses the 0..1 depth range of WebGPU clip space.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 { return viewProj.Row(i) }
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeFromVec(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromVec(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromVec(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromVec(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFromVec(r2)
	f.Planes[FrustumFar] = planeFromVec(r3.Sub(r2))
	return f
}

func planeFromVec(v mgl32.Vec4) Plane {
	p := Plane{Normal: v.Vec3(), Distance: v[3]}
	if l := p.Normal.Len(); l > 0 {
		p.Normal = p.Normal.Mul(1 / l)
		p.Distance /= l
	}
	return p
}

// IntersectsAABB reports whether the axis-aligned box [min, max] is at least partially inside
// the frustum. Uses the positive-vertex test against each plane.
//
// Parameters:
//   - min: box minimum corner
//   - max: box maximum corner
//
// Returns:
//   - bool: false only when the box lies entirely outside one of the planes
func (f Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	for _, p := range f.Planes {
		var v mgl32.Vec3
		for i := range 3 {
			if p.Normal[i] >= 0 {
				v[i] = max[i]
			} else {
				v[i] = min[i]
			}
		}
		if p.Normal.Dot(v)+p.Distance < 0 {
			return false
		}
	}
	return true
}
