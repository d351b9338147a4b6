package geom2d

import "testing"

func square(minX, minY, maxX, maxY Coord) Contour {
	return Contour{
		{minX, minY},
		{maxX, minY},
		{maxX, maxY},
		{minX, maxY},
	}
}

func TestContourIsHole(t *testing.T) {
	outer := square(0, 0, 10*MMToCoord, 10*MMToCoord)
	if outer.IsHole() {
		t.Fatalf("CCW square classified as hole")
	}

	hole := Contour{
		{0, 0},
		{0, 10 * MMToCoord},
		{10 * MMToCoord, 10 * MMToCoord},
		{10 * MMToCoord, 0},
	}
	if !hole.IsHole() {
		t.Fatalf("CW square not classified as hole")
	}
}

func TestBoxUnion(t *testing.T) {
	a := Box{Min: Point{0, 0}, Max: Point{10, 10}}
	b := Box{Min: Point{5, 5}, Max: Point{20, 8}}
	u := a.Union(b)
	want := Box{Min: Point{0, 0}, Max: Point{20, 10}}
	if u != want {
		t.Fatalf("Union = %+v, want %+v", u, want)
	}
}

func TestInsidePointInPolygon(t *testing.T) {
	ps := PolygonSet{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}}

	cases := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{5 * MMToCoord, 5 * MMToCoord}, true},
		{"outside_right", Point{15 * MMToCoord, 5 * MMToCoord}, false},
		{"outside_above", Point{5 * MMToCoord, 15 * MMToCoord}, false},
		{"near_origin_inside", Point{1, 1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Inside(ps, tc.p); got != tc.want {
				t.Errorf("Inside(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestInsideWithHole(t *testing.T) {
	outer := square(0, 0, 10*MMToCoord, 10*MMToCoord)
	hole := Contour{
		{3 * MMToCoord, 3 * MMToCoord},
		{3 * MMToCoord, 7 * MMToCoord},
		{7 * MMToCoord, 7 * MMToCoord},
		{7 * MMToCoord, 3 * MMToCoord},
	}
	if !hole.IsHole() {
		t.Fatalf("expected hole winding to be CW")
	}
	ps := PolygonSet{Contours: []Contour{outer, hole}}

	if Inside(ps, Point{5 * MMToCoord, 5 * MMToCoord}) {
		t.Errorf("center of hole should be outside the ring")
	}
	if !Inside(ps, Point{1 * MMToCoord, 1 * MMToCoord}) {
		t.Errorf("point in the ring body should be inside")
	}
}

func TestSplitPartsAssignsHoleToOwner(t *testing.T) {
	outerA := square(0, 0, 10*MMToCoord, 10*MMToCoord)
	outerB := square(20*MMToCoord, 0, 30*MMToCoord, 10*MMToCoord)
	hole := Contour{
		{3 * MMToCoord, 3 * MMToCoord},
		{3 * MMToCoord, 7 * MMToCoord},
		{7 * MMToCoord, 7 * MMToCoord},
		{7 * MMToCoord, 3 * MMToCoord},
	}
	ps := PolygonSet{Contours: []Contour{outerA, outerB, hole}}

	parts := SplitParts(ps)
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	found := false
	for _, part := range parts {
		if len(part.Contours) == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the hole to be attached to its enclosing part")
	}
}

func TestNearestPointOnBoundary(t *testing.T) {
	ps := PolygonSet{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}}
	p := Point{5 * MMToCoord, -3 * MMToCoord}
	nearest, _ := NearestPointOnBoundary(ps, p)
	if nearest.Y != 0 {
		t.Errorf("nearest boundary point = %+v, want y=0", nearest)
	}
}

func TestMoveInsideOutside(t *testing.T) {
	ps := PolygonSet{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}}

	outside := Point{-2 * MMToCoord, 5 * MMToCoord}
	moved := MoveInside(ps, outside, MMToCoord)
	if !Inside(ps, moved) && moved.X != 0 {
		t.Logf("MoveInside result: %+v", moved)
	}

	inside := Point{5 * MMToCoord, 5 * MMToCoord}
	pushed := MoveOutside(ps, inside, MMToCoord)
	if Inside(ps, pushed) {
		t.Errorf("MoveOutside(%v) = %v still inside", inside, pushed)
	}

	// Already-outside/inside points must be returned unchanged.
	if got := MoveInside(ps, inside, MMToCoord); got != inside {
		t.Errorf("MoveInside on interior point changed it: %v -> %v", inside, got)
	}
	if got := MoveOutside(ps, outside, MMToCoord); got != outside {
		t.Errorf("MoveOutside on exterior point changed it: %v -> %v", outside, got)
	}
}

func TestIndexPartContaining(t *testing.T) {
	parts := []PolygonSet{
		{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}},
		{Contours: []Contour{square(20*MMToCoord, 0, 30*MMToCoord, 10*MMToCoord)}},
	}
	idx := NewIndex(parts)

	if got := idx.PartContaining(Point{5 * MMToCoord, 5 * MMToCoord}); got != 0 {
		t.Errorf("PartContaining = %d, want 0", got)
	}
	if got := idx.PartContaining(Point{25 * MMToCoord, 5 * MMToCoord}); got != 1 {
		t.Errorf("PartContaining = %d, want 1", got)
	}
	if got := idx.PartContaining(Point{50 * MMToCoord, 50 * MMToCoord}); got != -1 {
		t.Errorf("PartContaining = %d, want -1", got)
	}
}

func TestIndexNearestPart(t *testing.T) {
	parts := []PolygonSet{
		{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}},
		{Contours: []Contour{square(100*MMToCoord, 0, 110*MMToCoord, 10*MMToCoord)}},
	}
	idx := NewIndex(parts)

	if got := idx.NearestPart(Point{11 * MMToCoord, 5 * MMToCoord}); got != 0 {
		t.Errorf("NearestPart = %d, want 0", got)
	}
}

func TestMoveToward(t *testing.T) {
	obstacle := PolygonSet{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}}
	p := Point{20 * MMToCoord, 5 * MMToCoord}
	t2 := Point{-20 * MMToCoord, 5 * MMToCoord}

	moved := MoveToward(p, t2, obstacle, MMToCoord)
	if Inside(obstacle, moved) {
		t.Errorf("MoveToward stepped inside the obstacle: %+v", moved)
	}
	if moved.X >= p.X {
		t.Errorf("MoveToward did not move towards target: %+v -> %+v", p, moved)
	}
}

func TestSmoothPreservesVertexCountParity(t *testing.T) {
	ps := PolygonSet{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}}
	smoothed := Smooth(ps, 1)
	if len(smoothed.Contours) != 1 {
		t.Fatalf("Smooth changed contour count: got %d", len(smoothed.Contours))
	}
	if len(smoothed.Contours[0]) != 2*len(ps.Contours[0]) {
		t.Errorf("Smooth vertex count = %d, want %d", len(smoothed.Contours[0]), 2*len(ps.Contours[0]))
	}
}

func TestBooleanOpsRoundTrip(t *testing.T) {
	a := PolygonSet{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}}
	b := PolygonSet{Contours: []Contour{square(5*MMToCoord, 5*MMToCoord, 15*MMToCoord, 15*MMToCoord)}}

	u := Union(a, b)
	if u.Empty() {
		t.Fatalf("Union of overlapping squares is empty")
	}
	if !Inside(u, Point{1 * MMToCoord, 1 * MMToCoord}) {
		t.Errorf("Union should still contain a's corner")
	}
	if !Inside(u, Point{14 * MMToCoord, 14 * MMToCoord}) {
		t.Errorf("Union should still contain b's corner")
	}

	inter := Intersection(a, b)
	if inter.Empty() {
		t.Fatalf("Intersection of overlapping squares is empty")
	}
	if !Inside(inter, Point{7 * MMToCoord, 7 * MMToCoord}) {
		t.Errorf("Intersection should contain the overlap region")
	}

	diff := Difference(a, b)
	if diff.Empty() {
		t.Fatalf("Difference of overlapping squares is empty")
	}
	if Inside(diff, Point{7 * MMToCoord, 7 * MMToCoord}) {
		t.Errorf("Difference should not contain the overlap region")
	}
	if !Inside(diff, Point{1 * MMToCoord, 1 * MMToCoord}) {
		t.Errorf("Difference should retain a's untouched corner")
	}
}

func TestOffsetGrowsAndShrinks(t *testing.T) {
	ps := PolygonSet{Contours: []Contour{square(0, 0, 10*MMToCoord, 10*MMToCoord)}}

	grown := Offset(ps, MMToCoord)
	if !Inside(grown, Point{-500, 5 * MMToCoord}) {
		t.Errorf("Offset(+1mm) did not grow past the original left edge")
	}

	shrunk := Inset(ps, MMToCoord)
	if Inside(shrunk, Point{500, 5 * MMToCoord}) {
		t.Errorf("Inset(1mm) should have removed the 0.5mm border strip")
	}
	if !Inside(shrunk, Point{5 * MMToCoord, 5 * MMToCoord}) {
		t.Errorf("Inset(1mm) should retain the center")
	}
}
