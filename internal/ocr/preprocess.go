package ocr

import (
	"image"

	"gocv.io/x/gocv"
)

// prepare returns the image handed to Tesseract and the factor it was
// scaled by. Short images are upscaled; with Preprocess set the result is
// binarized as dark text on a light background.
func prepare(img gocv.Mat, opts Options) (gocv.Mat, float64) {
	scale := upscaleFactor(img.Rows(), opts.MinHeight)

	var scaled gocv.Mat
	if scale > 1 {
		scaled = gocv.NewMat()
		gocv.Resize(img, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)
	} else {
		scaled = img.Clone()
	}

	if !opts.Preprocess {
		result := gocv.NewMat()
		gocv.CvtColor(scaled, &result, gocv.ColorBGRToRGB)
		scaled.Close()
		return result, scale
	}

	gray := gocv.NewMat()
	gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	scaled.Close()

	clahe := gocv.NewCLAHEWithParams(2.0, image.Point{X: 8, Y: 8})
	defer clahe.Close()

	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	enhanced.Close()

	// Light text on a dark page: invert.
	white := gocv.CountNonZero(binary)
	if float64(white) < float64(binary.Rows()*binary.Cols())/2 {
		gocv.BitwiseNot(binary, &binary)
	}

	result := gocv.NewMat()
	gocv.CvtColor(binary, &result, gocv.ColorGrayToBGR)
	binary.Close()
	return result, scale
}

func upscaleFactor(height, minHeight int) float64 {
	if height <= 0 || minHeight <= 0 || height >= minHeight {
		return 1
	}
	return float64(minHeight) / float64(height)
}
