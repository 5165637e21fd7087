package render

import (
	"image"

	"ocr-viewer/internal/annotation"
	"ocr-viewer/internal/viewport"
	"ocr-viewer/pkg/geometry"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Scene is the input of one render pass.
type Scene struct {
	Image       image.Image
	View        *viewport.Viewport
	Annotations *annotation.Collection
	Candidates  []annotation.Handle        // annotations of the current image, in list order
	Hits        map[annotation.Handle]bool // search results on the current image
	Selected    annotation.Handle
	Highlight   *geometry.Point // screen-space marker center, nil when none
	Style       SurfaceStyle
}

// TextWidth estimates the advance of text at the given font size using
// the metrics of the built-in bitmap face.
func TextWidth(text string, size float64) float64 {
	face := basicfont.Face7x13
	adv := font.MeasureString(face, text)
	return float64(adv) / 64 * size / float64(face.Height)
}

// Build produces the display list for s. Annotations with a malformed
// bounding box are skipped; they never abort the frame.
func Build(s Scene, log logrus.FieldLogger) Frame {
	v := s.View
	zoom := v.Zoom()
	canvas := v.Canvas()
	frame := Frame{
		Size:      canvas,
		Zoom:      zoom,
		Transform: v.Transform(),
		Image:     s.Image,
	}
	if s.Annotations == nil {
		return frame
	}

	sx, sy := v.DisplayScale()
	st := s.Style
	showText := zoom > st.LabelMinZoom

	for _, h := range s.Candidates {
		a, ok := s.Annotations.Get(h)
		if !ok {
			continue
		}
		if !a.HasValidBBox() {
			log.WithFields(logrus.Fields{"file": h.File, "index": h.Index, "points": len(a.BBox)}).
				Debug("skipping annotation with malformed bbox")
			continue
		}

		pts := a.BBox.ScaleXY(sx, sy)
		isHit := s.Hits[h]
		isSelected := h == s.Selected

		role := Plain
		switch {
		case isSelected:
			role = Selected
		case isHit:
			role = SearchHit
		}
		box := StyleFor(role)
		frame.Commands = append(frame.Commands, Command{
			Op:        OpPolygon,
			Points:    pts,
			Fill:      box.Fill,
			Stroke:    box.Stroke,
			LineWidth: box.Width / zoom,
			Target:    h,
		})

		anchor := geometry.Pt(pts[0].X, pts[0].Y-st.LabelOffset/zoom)
		fontSize := st.FontSize / zoom

		if isSelected && showText && a.Text != "" {
			frame.appendEditable(h, a.Text, anchor, fontSize, st)
		}

		if showText && a.Text != "" {
			frame.Commands = append(frame.Commands, Command{
				Op:       OpText,
				Text:     Truncate(a.Text, st.LabelMaxChars),
				Anchor:   anchor,
				FontSize: fontSize,
				Fill:     LabelColor(isHit),
				Target:   h,
			})
		}

		if isSelected {
			size := st.HandleSize / zoom
			for _, p := range pts {
				frame.Commands = append(frame.Commands, Command{
					Op: OpRect,
					Rect: geometry.Rect{
						MinX: p.X - size/2, MinY: p.Y - size/2,
						MaxX: p.X + size/2, MaxY: p.Y + size/2,
					},
					Fill:   st.HandleColor,
					Target: h,
				})
			}
		}
	}

	if s.Highlight != nil {
		hl := HighlightStyle()
		frame.Overlay = append(frame.Overlay, Command{
			Op:        OpCircle,
			Center:    *s.Highlight,
			Radius:    HighlightRadius,
			Fill:      hl.Fill,
			Stroke:    hl.Stroke,
			LineWidth: hl.Width,
		})
	}
	return frame
}

// appendEditable draws the editing background and full text of the
// selected annotation and records where the edit overlay goes.
func (f *Frame) appendEditable(h annotation.Handle, text string, anchor geometry.Point, fontSize float64, st SurfaceStyle) {
	width := TextWidth(text, fontSize)
	bg := geometry.Rect{MinX: anchor.X, MinY: anchor.Y - fontSize, MaxX: anchor.X + width, MaxY: anchor.Y}

	f.Commands = append(f.Commands,
		Command{Op: OpRect, Rect: bg, Fill: st.EditFill, Target: h},
		Command{Op: OpText, Text: text, Anchor: anchor, FontSize: fontSize, Fill: st.EditText, Target: h},
	)

	tl := f.Transform.Apply(geometry.Pt(bg.MinX, bg.MinY))
	br := f.Transform.Apply(geometry.Pt(bg.MaxX, bg.MaxY))
	f.Edit = &EditBox{
		Target:   h,
		Text:     text,
		Rect:     geometry.Rect{MinX: tl.X, MinY: tl.Y, MaxX: br.X, MaxY: br.Y},
		FontSize: st.FontSize,
	}
}
