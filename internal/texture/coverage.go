package texture

import "fur-mask-baker/internal/raster"

// Components labels 8-connected groups of covered pixels. labels holds the
// component of every pixel (-1 when uncovered) and sizes the pixel count
// of each component.
func Components(buf *raster.Buffer) (labels []int, sizes []int) {
	w := buf.Size
	h := buf.Size
	covered := buf.Rasterized

	labels = make([]int, w*h)
	for i := range labels {
		labels[i] = -1
	}
	compID := 0

	dx := [8]int{-1, 0, 1, -1, 1, -1, 0, 1}
	dy := [8]int{-1, -1, -1, 0, 0, 1, 1, 1}

	queue := make([]int, 0, 1024)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if !covered[idx] || labels[idx] >= 0 {
				continue
			}

			// BFS from this pixel
			queue = queue[:0]
			queue = append(queue, idx)
			labels[idx] = compID
			size := 0

			for len(queue) > 0 {
				curr := queue[0]
				queue = queue[1:]
				size++

				cy := curr / w
				cx := curr % w
				for d := 0; d < 8; d++ {
					nx := cx + dx[d]
					ny := cy + dy[d]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					ni := ny*w + nx
					if covered[ni] && labels[ni] < 0 {
						labels[ni] = compID
						queue = append(queue, ni)
					}
				}
			}

			sizes = append(sizes, size)
			compID++
		}
	}
	return labels, sizes
}

// Coverage summarizes how much of a buffer real triangles cover.
type Coverage struct {
	Pixels     int
	Fraction   float64
	Components int
	Largest    int
}

// MeasureCoverage reports covered pixel count and island statistics.
func MeasureCoverage(buf *raster.Buffer) Coverage {
	_, sizes := Components(buf)
	cov := Coverage{Components: len(sizes)}
	for _, s := range sizes {
		cov.Pixels += s
		if s > cov.Largest {
			cov.Largest = s
		}
	}
	if n := buf.Len(); n > 0 {
		cov.Fraction = float64(cov.Pixels) / float64(n)
	}
	return cov
}
