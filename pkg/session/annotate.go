package session

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/PreritO/cartesia-hackathon/pkg/detect"
)

var (
	ballColor   = color.RGBA{R: 255, G: 200, B: 0, A: 0}
	playerColor = color.RGBA{R: 0, G: 220, B: 90, A: 0}
)

// Annotate draws the detection boxes and labels onto the frame and
// returns a new JPEG. On any failure the original frame is returned so
// the turn still ships.
func Annotate(jpeg []byte, objects []detect.Object) []byte {
	if len(objects) == 0 {
		return jpeg
	}

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil || img.Empty() {
		return jpeg
	}
	defer img.Close()

	for _, o := range objects {
		c := playerColor
		if o.IsBall() {
			c = ballColor
		}

		rect := image.Rect(o.X1, o.Y1, o.X2, o.Y2)
		gocv.Rectangle(&img, rect, c, 2)

		label := fmt.Sprintf("%s %.2f", o.Label, o.Confidence)
		origin := image.Pt(o.X1, o.Y1-6)
		if origin.Y < 12 {
			origin.Y = o.Y1 + 14
		}
		gocv.PutText(&img, label, origin, gocv.FontHersheySimplex, 0.5, c, 1)
	}

	buf, err := gocv.IMEncode(".jpg", img)
	if err != nil {
		return jpeg
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out
}
