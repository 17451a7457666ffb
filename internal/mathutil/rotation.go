package mathutil

import "math"

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// EulerDegToQuat converts Euler XYZ angles in degrees, the unit used by
// project files, to a quaternion.
func EulerDegToQuat(d Vec3) Quat {
	return EulerToQuat(Deg2Rad(d[0]), Deg2Rad(d[1]), Deg2Rad(d[2]))
}
