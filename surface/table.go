package surface

// MaxCaseTriangles is the largest triangle count of any cube case.
const MaxCaseTriangles = 5

// Case is one entry of the cube table: Count triangles, each given as
// three encoded edges. An encoded edge packs both endpoints of a cube edge
// as bits x1 y1 z1 x2 y2 z2 (bit 5 down to bit 0), lower endpoint first.
type Case struct {
	Count uint8
	Edges [MaxCaseTriangles * 3]uint8
}

// Table maps an 8-bit corner code to its triangles. Corner c sits at
// (c>>2&1, c>>1&1, c&1); bit c is set when that corner is outside
// (weight below the threshold).
type Table [256]Case

var caseTable = generateTable()

// CaseTable returns the generated cube table.
func CaseTable() *Table { return &caseTable }

func cornerXYZ(c int) (x, y, z int) { return c >> 2 & 1, c >> 1 & 1, c & 1 }

// EdgeEndpoints decodes an encoded edge.
func EdgeEndpoints(e uint8) (x1, y1, z1, x2, y2, z2 int) {
	return int(e>>5) & 1, int(e>>4) & 1, int(e>>3) & 1, int(e>>2) & 1, int(e>>1) & 1, int(e) & 1
}

func encodeEdge(a, b int) uint8 {
	x1, y1, z1 := cornerXYZ(a)
	x2, y2, z2 := cornerXYZ(b)
	return uint8(x1<<5 | y1<<4 | z1<<3 | x2<<2 | y2<<1 | z2)
}

// Cube topology: 12 edges as (lower, upper) corner pairs and 6 faces as
// corner cycles.
var (
	cubeEdges = makeCubeEdges()
	cubeFaces = makeCubeFaces()
)

func makeCubeEdges() [12][2]int {
	var edges [12][2]int
	n := 0
	for a := 0; a < 8; a++ {
		for _, bit := range [3]int{4, 2, 1} {
			if a&bit == 0 {
				edges[n] = [2]int{a, a | bit}
				n++
			}
		}
	}
	return edges
}

func makeCubeFaces() [6][4]int {
	var faces [6][4]int
	n := 0
	for _, bit := range [3]int{4, 2, 1} {
		var uv []int
		for _, o := range [3]int{4, 2, 1} {
			if o != bit {
				uv = append(uv, o)
			}
		}
		u, v := uv[0], uv[1]
		for _, side := range [2]int{0, bit} {
			faces[n] = [4]int{side, side | u, side | u | v, side | v}
			n++
		}
	}
	return faces
}

func edgeIndex(a, b int) int {
	if a > b {
		a, b = b, a
	}
	for i, e := range cubeEdges {
		if e[0] == a && e[1] == b {
			return i
		}
	}
	return -1
}

func edgeOnFace(e, f int) bool {
	in := func(c int) bool {
		for _, fc := range cubeFaces[f] {
			if fc == c {
				return true
			}
		}
		return false
	}
	return in(cubeEdges[e][0]) && in(cubeEdges[e][1])
}

func shareFace(e1, e2 int) bool {
	for f := range cubeFaces {
		if edgeOnFace(e1, f) && edgeOnFace(e2, f) {
			return true
		}
	}
	return false
}

func generateTable() Table {
	var t Table
	for code := 0; code < 256; code++ {
		t[code] = buildCase(code)
	}
	return t
}

// buildCase links crossed edges face by face into closed loops, orients
// each loop toward the outside and fans it into triangles.
func buildCase(code int) Case {
	inside := func(c int) bool { return code&(1<<c) == 0 }

	var links [12][]int
	link := func(e1, e2 int) {
		links[e1] = append(links[e1], e2)
		links[e2] = append(links[e2], e1)
	}
	for _, cyc := range cubeFaces {
		var fe [4]int
		var crossed []int
		for k := 0; k < 4; k++ {
			a, b := cyc[k], cyc[(k+1)%4]
			fe[k] = edgeIndex(a, b)
			if inside(a) != inside(b) {
				crossed = append(crossed, k)
			}
		}
		switch len(crossed) {
		case 2:
			link(fe[crossed[0]], fe[crossed[1]])
		case 4:
			// Ambiguous face: cut off each inside corner on its own.
			for k := 0; k < 4; k++ {
				if inside(cyc[k]) {
					link(fe[(k+3)%4], fe[k])
				}
			}
		}
	}

	var c Case
	var visited [12]bool
	for start := 0; start < 12; start++ {
		if len(links[start]) == 0 || visited[start] {
			continue
		}
		loop := []int{start}
		visited[start] = true
		prev, cur := -1, start
		for {
			next := links[cur][0]
			if next == prev {
				next = links[cur][1]
			}
			if next == start {
				break
			}
			loop = append(loop, next)
			visited[next] = true
			prev, cur = cur, next
		}

		if loopFacing(loop, inside) < 0 {
			for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
				loop[i], loop[j] = loop[j], loop[i]
			}
		}
		loop = rotateToApex(loop)

		for i := 1; i+1 < len(loop); i++ {
			base := int(c.Count) * 3
			for k, e := range [3]int{loop[0], loop[i], loop[i+1]} {
				c.Edges[base+k] = encodeEdge(cubeEdges[e][0], cubeEdges[e][1])
			}
			c.Count++
		}
	}
	return c
}

// loopFacing returns the sign of the loop's Newell normal against the
// inside-to-outside direction. Coordinates are doubled edge midpoints.
func loopFacing(loop []int, inside func(int) bool) int {
	mid := func(e int) (x, y, z int) {
		ax, ay, az := cornerXYZ(cubeEdges[e][0])
		bx, by, bz := cornerXYZ(cubeEdges[e][1])
		return ax + bx, ay + by, az + bz
	}
	var nx, ny, nz int
	for i := range loop {
		px, py, pz := mid(loop[i])
		qx, qy, qz := mid(loop[(i+1)%len(loop)])
		nx += (py - qy) * (pz + qz)
		ny += (pz - qz) * (px + qx)
		nz += (px - qx) * (py + qy)
	}
	var dx, dy, dz int
	for _, e := range loop {
		out, in := cubeEdges[e][0], cubeEdges[e][1]
		if inside(out) {
			out, in = in, out
		}
		ox, oy, oz := cornerXYZ(out)
		ix, iy, iz := cornerXYZ(in)
		dx += ox - ix
		dy += oy - iy
		dz += oz - iz
	}
	dot := nx*dx + ny*dy + nz*dz
	switch {
	case dot < 0:
		return -1
	case dot > 0:
		return 1
	}
	return 0
}

// rotateToApex picks the fan apex whose diagonals never join two edges of
// the same cube face. Such diagonals would cut across a face shared with
// the neighboring cube and break watertightness.
func rotateToApex(loop []int) []int {
	n := len(loop)
	best, bestCount := 0, n
	for s := 0; s < n; s++ {
		count := 0
		for i := 2; i < n-1; i++ {
			if shareFace(loop[s], loop[(s+i)%n]) {
				count++
			}
		}
		if count < bestCount {
			best, bestCount = s, count
		}
	}
	if best == 0 {
		return loop
	}
	return append(append([]int(nil), loop[best:]...), loop[:best]...)
}
