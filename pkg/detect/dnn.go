package detect

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

const backendDNN = "dnn"

// cocoClasses contains the 80 COCO class names, indexed by class ID.
var cocoClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator",
	"book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// DNN runs a local ONNX detection model through OpenCV. Only person and
// sports-ball detections are kept; the rest of the COCO classes are noise
// for sports footage.
type DNN struct {
	net    gocv.Net
	config *Config
	logger *slog.Logger
	mu     sync.Mutex
}

// NewDNN loads the ONNX model from Config.ModelPath.
func NewDNN(opts ...Option) (*DNN, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.ModelPath == "" {
		return nil, ErrNoModel
	}
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, WrapError(backendDNN, fmt.Errorf("model file not found: %s", cfg.ModelPath))
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, WrapError(backendDNN, fmt.Errorf("failed to load model from %s", cfg.ModelPath))
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNN{
		net:    net,
		config: cfg,
		logger: cfg.Logger.With("component", "detect.dnn"),
	}, nil
}

// Detect runs the model on the JPEG frame. Serialized with a mutex; the
// underlying network is not safe for concurrent forward passes.
func (d *DNN) Detect(ctx context.Context, jpeg []byte) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, WrapError(backendDNN, fmt.Errorf("decode image: %w", err))
	}
	defer img.Close()

	if img.Empty() {
		return nil, WrapError(backendDNN, fmt.Errorf("empty image"))
	}

	imgW := float32(img.Cols())
	imgH := float32(img.Rows())

	inputSize := image.Pt(d.config.InputWidth, d.config.InputWidth)
	blob := gocv.BlobFromImage(img, 1.0/255.0, inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	objects := d.parseOutput(output, imgW, imgH)

	d.logger.Debug("detection complete", "objects", len(objects))

	return objects, nil
}

// Close releases the network.
func (d *DNN) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// parseOutput parses the YOLO-style output tensor.
// Output shape: [1, 84, N] where 84 = 4 bbox coords + 80 class scores.
func (d *DNN) parseOutput(output gocv.Mat, imgW, imgH float32) []Object {
	var boxes []image.Rectangle
	var confidences []float32
	var classIDs []int

	rows := output.Cols() // N candidate detections
	cols := output.Rows() // 4 bbox + 80 classes

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil
	}

	thresh := float32(d.config.ConfidenceThresh)
	inW := float32(d.config.InputWidth)

	for i := 0; i < rows; i++ {
		maxScore := float32(0)
		maxClassID := 0
		for c := 4; c < cols; c++ {
			score := data[c*rows+i]
			if score > maxScore {
				maxScore = score
				maxClassID = c - 4
			}
		}

		if maxScore < thresh {
			continue
		}
		label := cocoClasses[maxClassID]
		if !personClasses[label] && !ballClasses[label] {
			continue
		}

		// Model reports center x/y plus width/height in input-space pixels.
		cx := data[0*rows+i]
		cy := data[1*rows+i]
		w := data[2*rows+i]
		h := data[3*rows+i]

		x1 := int((cx - w/2) * imgW / inW)
		y1 := int((cy - h/2) * imgH / inW)
		x2 := int((cx + w/2) * imgW / inW)
		y2 := int((cy + h/2) * imgH / inW)

		boxes = append(boxes, image.Rect(x1, y1, x2, y2))
		confidences = append(confidences, maxScore)
		classIDs = append(classIDs, maxClassID)
	}

	if len(boxes) == 0 {
		return nil
	}

	indices := gocv.NMSBoxes(boxes, confidences, thresh, 0.45)

	var objects []Object
	for _, idx := range indices {
		box := boxes[idx]
		objects = append(objects, Object{
			Label:      cocoClasses[classIDs[idx]],
			Confidence: float64(confidences[idx]),
			X1:         box.Min.X,
			Y1:         box.Min.Y,
			X2:         box.Max.X,
			Y2:         box.Max.Y,
		})
	}

	return objects
}

// Verify DNN implements Detector at compile time.
var _ Detector = (*DNN)(nil)
