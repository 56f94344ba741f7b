// Package detect provides object detection for sports video frames.
//
// Two backends implement the Detector interface: Roboflow (hosted REST
// inference) and DNN (local ONNX model through OpenCV). Both return the same
// Object list filtered to the classes the commentary pipeline cares about:
// players and the ball.
//
// Example usage:
//
//	det, _ := detect.NewRoboflow(
//	    detect.WithAPIKey(os.Getenv("ROBOFLOW_API_KEY")),
//	    detect.WithModelID("football-detection"),
//	)
//	defer det.Close()
//
//	objects, _ := det.Detect(ctx, jpegBytes)
package detect

import "context"

// Ball and player class labels, lowercase. Different models name these
// classes differently; all spellings seen in the wild are accepted.
var (
	ballClasses = map[string]bool{
		"football":    true,
		"ball":        true,
		"sports ball": true,
		"sports-ball": true,
	}
	personClasses = map[string]bool{
		"player":          true,
		"person":          true,
		"football-player": true,
		"football player": true,
	}
)

// Object is one detected bounding box in pixel coordinates.
type Object struct {
	Label      string
	Confidence float64
	X1, Y1     int
	X2, Y2     int
}

// Center returns the box center in pixels.
func (o Object) Center() (x, y int) {
	return (o.X1 + o.X2) / 2, (o.Y1 + o.Y2) / 2
}

// NormCenter returns the box center normalized to [0,1] for the given
// frame dimensions.
func (o Object) NormCenter(frameW, frameH int) (x, y float64) {
	cx, cy := o.Center()
	if frameW <= 0 || frameH <= 0 {
		return 0, 0
	}
	return float64(cx) / float64(frameW), float64(cy) / float64(frameH)
}

// IsBall reports whether the label names a ball class.
func (o Object) IsBall() bool {
	return ballClasses[o.Label]
}

// IsPerson reports whether the label names a player class.
func (o Object) IsPerson() bool {
	return personClasses[o.Label]
}

// HasBall reports whether any object in the list is a ball.
func HasBall(objects []Object) bool {
	for _, o := range objects {
		if o.IsBall() {
			return true
		}
	}
	return false
}

// Balls returns the ball detections.
func Balls(objects []Object) []Object {
	var out []Object
	for _, o := range objects {
		if o.IsBall() {
			out = append(out, o)
		}
	}
	return out
}

// Persons returns the player detections.
func Persons(objects []Object) []Object {
	var out []Object
	for _, o := range objects {
		if o.IsPerson() {
			out = append(out, o)
		}
	}
	return out
}

// Detector is the interface for object detection backends.
// Detect is stateless per call aside from the one-time model load.
type Detector interface {
	// Detect finds objects in the JPEG image. A backend that is not yet
	// ready returns an empty list, not an error, so downstream
	// summarization degrades to "no players detected".
	Detect(ctx context.Context, jpeg []byte) ([]Object, error)

	// Close releases resources.
	Close() error
}
