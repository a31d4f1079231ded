// Package hilbert implements the 2D Hilbert space-filling curve for
// power-of-two grids. The curve maps a 1D index to 2D coordinates (and back)
// while preserving locality: numerically adjacent indices land on spatially
// adjacent cells, which keeps contiguous file ranges visually contiguous when
// a file is painted onto a square texture.
package hilbert

// XYToD converts grid coordinates (x, y) to the Hilbert curve index for an
// n-by-n grid, n a power of two. The mapping is a bijection from
// [0,n) x [0,n) onto [0,n^2).
func XYToD(n, x, y uint32) uint64 {
	var d uint64
	for s := n / 2; s > 0; s /= 2 {
		var rx, ry uint32
		if x&s > 0 {
			rx = 1
		}
		if y&s > 0 {
			ry = 1
		}
		d += uint64(s) * uint64(s) * uint64((3*rx)^ry)

		// Rotate the quadrant so the sub-curve orientation matches.
		if ry == 0 {
			if rx == 1 {
				x = s - 1 - x
				y = s - 1 - y
			}
			x, y = y, x
		}
	}
	return d
}

// DToXY converts a Hilbert curve index back to grid coordinates for an n-by-n
// grid, n a power of two. Inverse of XYToD.
func DToXY(n uint32, d uint64) (x, y uint32) {
	t := d
	for s := uint32(1); s < n; s *= 2 {
		rx := uint32(1) & uint32(t/2)
		ry := uint32(1) & uint32(t^uint64(rx))

		if ry == 0 {
			if rx == 1 {
				x = s - 1 - x
				y = s - 1 - y
			}
			x, y = y, x
		}

		x += s * rx
		y += s * ry
		t /= 4
	}
	return x, y
}
