package tiling

import "github.com/1broseidon/groupwm/internal/platform"

// navigateSpatial finds the window whose centre is closest to the current
// window's centre in direction dir, using Manhattan distance. Ties go to the
// earlier window in order. With wrap set and nothing in that direction, it
// jumps to the window furthest along the opposite edge, preferring the same
// row or column.
func navigateSpatial(order []platform.WindowID, rects map[platform.WindowID]platform.Rect, from platform.WindowID, dir Direction, wrap bool) (platform.WindowID, bool) {
	current, ok := rects[from]
	if !ok {
		return 0, false
	}
	cx, cy := current.Center()

	var best platform.WindowID
	bestDist := -1
	for _, id := range order {
		if id == from {
			continue
		}
		r, ok := rects[id]
		if !ok {
			continue
		}
		x, y := r.Center()

		inDirection := false
		switch dir {
		case DirUp:
			inDirection = y < cy
		case DirDown:
			inDirection = y > cy
		case DirLeft:
			inDirection = x < cx
		case DirRight:
			inDirection = x > cx
		}
		if !inDirection {
			continue
		}

		dist := abs(x-cx) + abs(y-cy)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = id
		}
	}
	if bestDist >= 0 {
		return best, true
	}
	if !wrap {
		return 0, false
	}

	found := false
	bestScore := 0
	for _, id := range order {
		if id == from {
			continue
		}
		r, ok := rects[id]
		if !ok {
			continue
		}
		x, y := r.Center()

		var score int
		switch dir {
		case DirUp:
			// Wrapping up lands on the bottom edge.
			score = y*10000 - abs(x-cx)
		case DirDown:
			score = -y*10000 - abs(x-cx)
		case DirLeft:
			score = x*10000 - abs(y-cy)
		case DirRight:
			score = -x*10000 - abs(y-cy)
		}
		if !found || score > bestScore {
			bestScore = score
			best = id
			found = true
		}
	}
	return best, found
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
