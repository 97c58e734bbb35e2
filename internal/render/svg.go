package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"heritage_tree/internal/layout"
)

const avatarClipID = "avatar-clip-tree"

// WriteSVG 将场景序列化为 SVG，视图变换作用在顶层分组上
func WriteSVG(w io.Writer, scene *Scene, view layout.ViewTransform, width, height float64) error {
	st := scene.Style
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s">`,
		f(width), f(height)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`  <defs><clipPath id="%s"><circle cx="0" cy="0" r="%s"/></clipPath></defs>`,
		avatarClipID, f(st.ClipRadius)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`  <g class="viewport" transform="%s">`, view.String()))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf(`    <g class="links" fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="2">`, st.LinkColor))
	sb.WriteString("\n")
	for _, l := range scene.Links {
		sb.WriteString(fmt.Sprintf(`      <path d="%s"/>`, l.Path))
		sb.WriteString("\n")
	}
	sb.WriteString("    </g>\n")

	sb.WriteString(`    <g class="nodes">`)
	sb.WriteString("\n")
	for _, c := range scene.Cards {
		writeCard(&sb, st, c)
	}
	sb.WriteString("    </g>\n")

	sb.WriteString("  </g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeCard(sb *strings.Builder, st Style, c Card) {
	hw, hh := st.CardWidth/2, st.CardHeight/2
	textX := -hw + st.TextOffset

	sb.WriteString(fmt.Sprintf(`      <g class="node" data-person-id="%s" transform="translate(%s,%s)" style="cursor:pointer">`,
		html.EscapeString(c.PersonID), f(c.X), f(c.Y)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`        <rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="white" stroke="%s" stroke-width="2.5"/>`,
		f(-hw), f(-hh), f(st.CardWidth), f(st.CardHeight), f(st.CardRadius), c.Stroke))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`        <g transform="translate(%s,0)">`, f(-hw+st.AvatarOffset)))
	sb.WriteString(fmt.Sprintf(`<circle r="%s" fill="#f8fafc" stroke="#e2e8f0" stroke-width="1"/>`, f(st.AvatarRadius)))
	sb.WriteString(fmt.Sprintf(`<image href="%s" x="%s" y="%s" width="%s" height="%s" clip-path="url(#%s)" preserveAspectRatio="xMidYMid slice"/>`,
		html.EscapeString(c.Avatar), f(-st.ClipRadius), f(-st.ClipRadius), f(2*st.ClipRadius), f(2*st.ClipRadius), avatarClipID))
	sb.WriteString("</g>\n")
	sb.WriteString(fmt.Sprintf(`        <text x="%s" y="-5" dy="0.31em" font-size="13px" font-weight="700" fill="#1e293b">%s</text>`,
		f(textX), html.EscapeString(c.Name)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`        <text x="%s" y="15" font-size="11px" font-weight="500" fill="#64748b">%s</text>`,
		f(textX), html.EscapeString(c.Years)))
	sb.WriteString("\n      </g>\n")
}

func f(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}
