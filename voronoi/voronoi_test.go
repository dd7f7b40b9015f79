package voronoi

import (
	"testing"

	"github.com/pthm-cable/particlecore/geom"
)

func TestGenerateSquareProducesTwoTriangles(t *testing.T) {
	gens := []Generator{
		{Position: geom.Vec2{X: 0, Y: 0}, Index: 0},
		{Position: geom.Vec2{X: 1, Y: 0}, Index: 1},
		{Position: geom.Vec2{X: 1, Y: 1}, Index: 2},
		{Position: geom.Vec2{X: 0, Y: 1}, Index: 3},
	}

	var count int
	seen := map[[3]int]bool{}
	Generate(gens, 0.01, func(a, b, c int) {
		count++
		key := sorted3(a, b, c)
		if seen[key] {
			t.Errorf("triangle (%d,%d,%d) reported more than once", a, b, c)
		}
		seen[key] = true
	})

	if count != 2 {
		t.Fatalf("expected exactly two triangles for a square of 4 points, got %d", count)
	}
}

func TestGenerateTooFewPointsNoCallback(t *testing.T) {
	gens := []Generator{
		{Position: geom.Vec2{X: 0, Y: 0}, Index: 0},
		{Position: geom.Vec2{X: 1, Y: 0}, Index: 1},
	}
	called := false
	Generate(gens, 0.01, func(a, b, c int) { called = true })
	if called {
		t.Fatal("expected no triangles from fewer than 3 points")
	}
}

func sorted3(a, b, c int) [3]int {
	arr := [3]int{a, b, c}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if arr[j] < arr[i] {
				arr[i], arr[j] = arr[j], arr[i]
			}
		}
	}
	return arr
}
