package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"

	"github.com/five82/marquee/internal/artwork"
)

const halfBlock = "▀"

// renderPoster draws img into a width x height cell box using upper half
// blocks, two pixel rows per cell. The image is fitted and centered; cells
// it does not cover are painted with bg.
func renderPoster(img image.Image, width, height int, bg string) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	fill := lipgloss.NewStyle().Background(lipgloss.Color(bg)).Render(" ")
	if img == nil {
		return blankBox(fill, width, height)
	}

	fitted := imaging.Fit(img, width, height*2, imaging.Box)
	b := fitted.Bounds()
	offX := (width - b.Dx()) / 2
	offY := (height*2 - b.Dy()) / 2

	pixel := func(x, y int) (string, bool) {
		px, py := x-offX, y-offY
		if px < 0 || py < 0 || px >= b.Dx() || py >= b.Dy() {
			return "", false
		}
		return hexColor(fitted.At(b.Min.X+px, b.Min.Y+py)), true
	}

	var out strings.Builder
	for row := 0; row < height; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		for col := 0; col < width; col++ {
			top, okTop := pixel(col, row*2)
			bottom, okBottom := pixel(col, row*2+1)
			if !okTop && !okBottom {
				out.WriteString(fill)
				continue
			}
			if !okTop {
				top = bg
			}
			if !okBottom {
				bottom = bg
			}
			out.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom)).
				Render(halfBlock))
		}
	}
	return out.String()
}

func blankBox(fill string, width, height int) string {
	line := strings.Repeat(fill, width)
	lines := make([]string, height)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// placeholderLabel is the text shown in place of an image that is not
// loaded. Absent artwork and failed loads read differently.
func placeholderLabel(s artwork.State, spinnerFrame string) string {
	switch s.Phase.Normalize() {
	case artwork.PhaseLoading:
		return spinnerFrame
	case artwork.PhaseLoaded:
		return ""
	}
	if s.Missing() {
		return "no artwork"
	}
	return "unavailable"
}

// renderPlaceholder centers label in a width x height box.
func renderPlaceholder(label string, width, height int, style lipgloss.Style) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	return style.
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(truncate(label, width))
}
