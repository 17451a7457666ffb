package mathutil

// Mat4 is a 4×4 affine matrix stored row-major. Used for the avatar root
// transform (mirroring) and BMD rigid bone poses.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// MulDir transforms a direction (w=0).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return m.Linear().MulVec3(v)
}

// Linear returns the upper-left 3×3 block.
func (m Mat4) Linear() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 block and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// TRS composes translation × rotation × scale.
func TRS(t Vec3, q Quat, s Vec3) Mat4 {
	r := Mat3Mul(QuatToMat3(q), Mat3Diag(s[0], s[1], s[2]))
	return FromMat3Translation(r, t)
}

// AffineInverse inverts an affine matrix. A singular linear block yields identity.
func (m Mat4) AffineInverse() Mat4 {
	lin := m.Linear()
	if d := lin.Det(); d > -1e-12 && d < 1e-12 {
		return Mat4Identity()
	}
	inv := lin.Inverse()
	t := inv.MulVec3(m.Translation()).Scale(-1)
	return FromMat3Translation(inv, t)
}

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		d := m[i] - id[i]
		if d > 1e-8 || d < -1e-8 {
			return false
		}
	}
	return true
}
