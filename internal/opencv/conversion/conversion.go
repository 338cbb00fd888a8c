package conversion

import (
	"fmt"
	"image"
	"math"

	"mri-enhancer/internal/opencv/safe"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// ToImage converts a Mat to a standard Go image for display. Single channel
// float Mats are expected to hold values in [0,1].
func ToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	srcMat := src.GetMat()

	switch src.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return srcMat.ToImage()
	case gocv.MatTypeCV32FC1:
		scaled := gocv.NewMat()
		defer scaled.Close()

		srcMat.ConvertToWithParams(&scaled, gocv.MatTypeCV8UC1, 255, 0)
		if scaled.Empty() {
			return nil, fmt.Errorf("float to 8-bit conversion produced an empty Mat")
		}
		return scaled.ToImage()
	default:
		return nil, fmt.Errorf("unsupported MatType for display: %d", int(src.Type()))
	}
}

// Fit scales img down so that its longest side is at most maxSize. Smaller
// images are returned unchanged.
func Fit(img image.Image, maxSize int) image.Image {
	if img == nil || maxSize <= 0 {
		return img
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	longest := max(width, height)
	if longest <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(longest)
	target := image.Rect(0, 0,
		max(1, int(math.Round(float64(width)*scale))),
		max(1, int(math.Round(float64(height)*scale))))

	var dst draw.Image
	if _, ok := img.(*image.Gray); ok {
		dst = image.NewGray(target)
	} else {
		dst = image.NewRGBA(target)
	}

	draw.ApproxBiLinear.Scale(dst, target, img, bounds, draw.Src, nil)
	return dst
}

// Float64s copies the pixels of a single channel float Mat in row-major order.
func Float64s(src *safe.Mat) ([]float64, error) {
	if err := safe.ValidateMatType(src, gocv.MatTypeCV32FC1, "float extraction"); err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	data, err := srcMat.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("float data access failed: %w", err)
	}

	values := make([]float64, len(data))
	for i, v := range data {
		values[i] = float64(v)
	}
	return values, nil
}
