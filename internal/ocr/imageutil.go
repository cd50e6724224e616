package ocr

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// preprocess converts a page to grayscale, optionally equalizes and binarizes
// it, and returns it PNG-encoded for Tesseract.
func preprocess(img image.Image, binarize bool) ([]byte, error) {
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	out := gray
	if binarize {
		clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
		defer clahe.Close()
		enhanced := gocv.NewMat()
		defer enhanced.Close()
		clahe.Apply(gray, &enhanced)

		binary := gocv.NewMat()
		defer binary.Close()
		gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

		// Tesseract expects dark text on a light page.
		white := float64(gocv.CountNonZero(binary)) / float64(binary.Rows()*binary.Cols())
		if white < 0.5 {
			gocv.BitwiseNot(binary, &binary)
		}
		out = binary
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
