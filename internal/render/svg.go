package render

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// SVG renders the scene as a standalone document. Labels are drawn above
// the bubbles.
func SVG(s *Scene) string {
	var sb strings.Builder
	_ = WriteSVG(&sb, s)
	return sb.String()
}

func WriteSVG(w io.Writer, s *Scene) error {
	if s == nil {
		return nil
	}
	width, height := s.Size()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<g stroke-width="2">
`, width, height, width, height))

	for _, sh := range s.shapes {
		if sh.Radius <= 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle id="bubble_%s" cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s"/>
`, html.EscapeString(sh.ID), sh.X, sh.Y, sh.Radius, attr(sh.Fill, "none"), attr(sh.Stroke, "none")))
	}
	sb.WriteString("</g>\n")

	for _, l := range s.labels {
		sb.WriteString(fmt.Sprintf(`<text class="%s" x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#333333">%s</text>
`, html.EscapeString(l.Class), l.X, l.Y, html.EscapeString(l.Text)))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func attr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return html.EscapeString(v)
}
