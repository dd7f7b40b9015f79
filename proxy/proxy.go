// Package proxy implements the spatial-hash tag and sortable proxy array
// used to find particle-particle contacts in near-linear time (spec §4.B).
package proxy

import (
	"sort"

	"github.com/pthm-cable/particlecore/geom"
)

const (
	tagBits    = 32
	xTruncBits = 12
	yTruncBits = 12

	yOffset = 1 << (yTruncBits - 1)
	yShift  = tagBits - yTruncBits
	xShift  = tagBits - yTruncBits - xTruncBits
	xScale  = 1 << xShift
	xOffset = xScale * (1 << (xTruncBits - 1))
)

// Tag packs a 2-D grid cell into a single 32-bit integer so integer
// ordering corresponds to row-major cell ordering (spec §4.B).
type Tag int32

// ComputeTag returns the cell tag for a position already scaled by
// 1/diameter (i.e. u = x/diameter, v = y/diameter).
func ComputeTag(u, v float32) Tag {
	// The y offset only makes the truncation floor-like; it is removed again
	// before the shift so the y cell stays signed and cannot overflow int32.
	return Tag(((int32(v+yOffset) - yOffset) << yShift) + int32(xScale*u+xOffset))
}

// ComputeRelativeTag offsets a tag by (dx,dy) grid cells.
func ComputeRelativeTag(tag Tag, dx, dy int32) Tag {
	return tag + Tag(dy<<yShift) + Tag(dx<<xShift)
}

// Proxy is a sortable (index, tag) pair (spec §3).
type Proxy struct {
	Index int
	Tag   Tag
}

// ByTag sorts proxies by ascending tag (spec §3 invariant, §4.B "sort is
// non-stable by tag ascending").
type ByTag []Proxy

func (p ByTag) Len() int           { return len(p) }
func (p ByTag) Less(i, j int) bool { return p[i].Tag < p[j].Tag }
func (p ByTag) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

// Retag recomputes every proxy's tag from the current positions and sorts
// the array ascending by tag (first half of updateContacts in spec §4.C).
func Retag(proxies []Proxy, positions []geom.Vec2, inverseDiameter float32) {
	for i := range proxies {
		p := positions[proxies[i].Index]
		proxies[i].Tag = ComputeTag(inverseDiameter*p.X, inverseDiameter*p.Y)
	}
	sort.Sort(ByTag(proxies))
}

// RightTag, BottomLeftTag and BottomRightTag are the three relative tags the
// contact-detection sweep in spec §4.B uses to bound its neighbor scans.
func RightTag(tag Tag) Tag      { return ComputeRelativeTag(tag, 1, 0) }
func BottomLeftTag(tag Tag) Tag { return ComputeRelativeTag(tag, -1, 1) }
func BottomRightTag(tag Tag) Tag { return ComputeRelativeTag(tag, 1, 1) }

// TagRange returns the [lowTag, highTag] bounds that fully cover an AABB,
// for use by the query surface's binary search (spec §4.I).
func TagRange(aabb geom.AABB, inverseDiameter float32) (low, high Tag) {
	low = ComputeTag(inverseDiameter*aabb.Lower.X, inverseDiameter*aabb.Lower.Y)
	high = ComputeTag(inverseDiameter*aabb.Upper.X, inverseDiameter*aabb.Upper.Y)
	return
}

// LowerBound returns the index of the first proxy with Tag >= tag, assuming
// proxies is sorted ascending by tag.
func LowerBound(proxies []Proxy, tag Tag) int {
	return sort.Search(len(proxies), func(i int) bool { return proxies[i].Tag >= tag })
}

// UpperBound returns the index one past the last proxy with Tag <= tag.
func UpperBound(proxies []Proxy, tag Tag) int {
	return sort.Search(len(proxies), func(i int) bool { return proxies[i].Tag > tag })
}
