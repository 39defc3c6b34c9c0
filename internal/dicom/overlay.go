package dicom

import (
	"image"

	"github.com/suyashkumar/dicom/pkg/frame"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawLabel renders text white on black, scaled to three quarters of the
// frame width and centered.
func drawLabel(nativeFrame *frame.NativeFrame[uint8], width, height int, text string) {
	if text == "" || width <= 0 || height <= 0 {
		return
	}

	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Height

	textImg := image.NewGray(image.Rect(0, 0, textWidth, textHeight))
	drawer := &font.Drawer{
		Dst:  textImg,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{Y: fixed.I(face.Ascent)},
	}
	drawer.DrawString(text)

	scaledWidth := max(1, width*3/4)
	scaledHeight := max(1, scaledWidth*textHeight/textWidth)
	if scaledHeight > height {
		scaledHeight = height
		scaledWidth = max(1, scaledHeight*textWidth/textHeight)
	}

	// The canvas aliases the frame, so drawing updates the pixel data.
	canvas := &image.Gray{
		Pix:    nativeFrame.RawData,
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}
	posX := (width - scaledWidth) / 2
	posY := (height - scaledHeight) / 2
	target := image.Rect(posX, posY, posX+scaledWidth, posY+scaledHeight)

	draw.BiLinear.Scale(canvas, target, textImg, textImg.Bounds(), draw.Src, nil)
}
