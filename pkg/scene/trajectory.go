package scene

import "math"

// Movement classification thresholds, in normalized frame units.
const (
	stationaryThresh = 0.02
	rapidThresh      = 0.1

	maxTrajectoryPoints = 5
)

// Point is a normalized (x, y) centroid in [0,1] frame coordinates.
type Point struct {
	X, Y float64
}

// Trajectory holds the last few ball centroids for movement phrasing.
// Bounded to maxTrajectoryPoints; older points are discarded.
type Trajectory struct {
	points []Point
}

// Add appends a centroid, truncating to the bound.
func (t *Trajectory) Add(x, y float64) {
	t.points = append(t.points, Point{X: x, Y: y})
	if len(t.points) > maxTrajectoryPoints {
		t.points = t.points[len(t.points)-maxTrajectoryPoints:]
	}
}

// Len returns the number of retained points.
func (t *Trajectory) Len() int {
	return len(t.points)
}

// Reset clears the history.
func (t *Trajectory) Reset() {
	t.points = nil
}

// Movement derives a movement phrase from the last two points. Returns ""
// when fewer than two points exist.
func (t *Trajectory) Movement() string {
	if len(t.points) < 2 {
		return ""
	}

	prev := t.points[len(t.points)-2]
	cur := t.points[len(t.points)-1]
	dx := cur.X - prev.X
	dy := cur.Y - prev.Y
	disp := math.Hypot(dx, dy)

	if disp < stationaryThresh {
		return "nearly stationary"
	}

	speed := "steadily"
	if disp > rapidThresh {
		speed = "rapidly"
	}

	var dirs []string
	if math.Abs(dx) >= stationaryThresh/2 {
		if dx < 0 {
			dirs = append(dirs, "left")
		} else {
			dirs = append(dirs, "right")
		}
	}
	if math.Abs(dy) >= stationaryThresh/2 {
		if dy < 0 {
			dirs = append(dirs, "upfield")
		} else {
			dirs = append(dirs, "downfield")
		}
	}

	if len(dirs) == 0 {
		return "drifting " + speed
	}

	phrase := "moving " + speed + " " + dirs[0]
	if len(dirs) == 2 {
		phrase += " and " + dirs[1]
	}
	return phrase
}
