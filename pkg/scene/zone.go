package scene

// Zone names the region of the pitch a normalized (x, y) point falls in.
// The default grid divides the frame into 3x3 cells named by horizontal
// third and depth. American football instead uses field bands, since
// end-zone proximity matters more than screen depth.
func Zone(x, y float64, sport string) string {
	if sport == "football" {
		return footballBand(x)
	}
	return gridZone(x, y)
}

func gridZone(x, y float64) string {
	var h string
	switch {
	case x < 1.0/3:
		h = "left"
	case x < 2.0/3:
		h = "center"
	default:
		h = "right"
	}

	var depth string
	switch {
	case y < 1.0/3:
		depth = "far end"
	case y < 2.0/3:
		depth = "midfield"
	default:
		depth = "near side"
	}

	return h + " " + depth
}

func footballBand(x float64) string {
	switch {
	case x <= 0.1 || x >= 0.9:
		return "the end zone"
	case x <= 0.2 || x >= 0.8:
		return "the red zone"
	default:
		return "midfield"
	}
}
