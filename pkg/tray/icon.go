package tray

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Base icon, rendered without a badge until the first snapshot arrives.
//
//go:embed icon.png
var baseIcon []byte

// badgeCap limits the rendered player count; anything above shows as "999+".
const badgeCap = 999

var (
	badgeBorder  = color.RGBA{0x22, 0x22, 0x22, 0xff}
	badgeText    = color.RGBA{0xf9, 0xfc, 0xee, 0xff}
	badgeTeal    = color.RGBA{0x23, 0x3f, 0x47, 0xff} // normal player count
	badgeGreen   = color.RGBA{0x00, 0x64, 0x00, 0xff} // high player count
	badgeHiText  = color.RGBA{0xc7, 0xff, 0xc7, 0xff}
	badgeDarkRed = color.RGBA{0x8b, 0x00, 0x00, 0xff} // master unreachable
)

// PlainIcon is the badge-less base icon.
func PlainIcon() []byte {
	return baseIcon
}

// CountIcon renders the player count onto the base icon. Counts at or above
// highCount use the green variant.
func CountIcon(players, highCount int) ([]byte, error) {
	bg, fg := badgeTeal, badgeText
	if players >= highCount {
		bg, fg = badgeGreen, badgeHiText
	}
	return renderBadge(countText(players), bg, fg)
}

// UnknownIcon renders the "?" badge shown once the master has been
// unreachable for too long.
func UnknownIcon() ([]byte, error) {
	return renderBadge("?", badgeDarkRed, badgeText)
}

// countText formats a player count for the badge, capping it at badgeCap.
func countText(players int) string {
	if players > badgeCap {
		return fmt.Sprintf("%d+", badgeCap)
	}
	return fmt.Sprintf("%d", players)
}

// renderBadge draws text bottom-right onto a copy of the base icon and
// re-encodes it as PNG. The bitmap font is integer-scaled to the largest
// factor that keeps the badge inside the icon.
func renderBadge(text string, bg, fg color.Color) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(baseIcon))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base icon: %w", err)
	}

	bounds := src.Bounds()
	icon := image.NewRGBA(bounds)
	draw.Draw(icon, bounds, src, bounds.Min, draw.Src)

	face := basicfont.Face7x13
	textW := font.MeasureString(face, text).Ceil()

	small := image.NewRGBA(image.Rect(0, 0, textW, face.Height))
	drawer := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	drawer.DrawString(text)

	const pad, border = 2, 1
	inset := 2 * (pad + border)

	scale := (bounds.Dx() - inset) / textW
	if max := (bounds.Dy() - inset) / face.Height; scale > max {
		scale = max
	}
	if scale < 1 {
		scale = 1
	}

	tw, th := textW*scale, face.Height*scale
	x0 := bounds.Max.X - tw - inset
	y0 := bounds.Max.Y - th - inset

	draw.Draw(icon, image.Rect(x0, y0, bounds.Max.X, bounds.Max.Y),
		image.NewUniform(badgeBorder), image.Point{}, draw.Src)
	draw.Draw(icon, image.Rect(x0+border, y0+border, bounds.Max.X-border, bounds.Max.Y-border),
		image.NewUniform(bg), image.Point{}, draw.Src)

	target := image.Rect(x0+border+pad, y0+border+pad, x0+border+pad+tw, y0+border+pad+th)
	draw.NearestNeighbor.Scale(icon, target, small, small.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, icon); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
