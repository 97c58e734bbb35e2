package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fogleman/gg"
)

var placeholderPalette = []string{"#c7d2fe", "#fbcfe8", "#bbf7d0", "#fde68a", "#bae6fd", "#ddd6fe"}

// ExportFilename 导出图片的文件名
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("Family_Tree_%d.png", now.Year())
}

// WritePNG 将场景按自然包围盒（加边距）栅格化为 PNG，与当前平移/缩放无关
func WritePNG(w io.Writer, scene *Scene) error {
	st := scene.Style
	b := scene.Bounds
	width := int(math.Ceil(b.Width + 2*st.ExportMargin))
	height := int(math.Ceil(b.Height + 2*st.ExportMargin))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("empty scene")
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(st.Background)
	dc.Clear()

	// 场景坐标平移到画布内
	dc.Translate(st.ExportMargin-b.X, st.ExportMargin-b.Y)

	dc.SetHexColor(st.LinkColor)
	dc.SetLineWidth(2)
	for _, l := range scene.Links {
		c1, c2 := l.Edge.Controls()
		dc.MoveTo(l.Edge.Source.X, l.Edge.Source.Y)
		dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, l.Edge.Target.X, l.Edge.Target.Y)
		dc.Stroke()
	}

	for _, c := range scene.Cards {
		paintCard(dc, st, c)
	}

	return dc.EncodePNG(w)
}

func paintCard(dc *gg.Context, st Style, c Card) {
	hw, hh := st.CardWidth/2, st.CardHeight/2

	dc.DrawRoundedRectangle(c.X-hw, c.Y-hh, st.CardWidth, st.CardHeight, st.CardRadius)
	dc.SetHexColor("#ffffff")
	dc.FillPreserve()
	dc.SetHexColor(c.Stroke)
	dc.SetLineWidth(2.5)
	dc.Stroke()

	ax, ay := c.X-hw+st.AvatarOffset, c.Y
	dc.DrawCircle(ax, ay, st.AvatarRadius)
	dc.SetHexColor("#f8fafc")
	dc.FillPreserve()
	dc.SetHexColor("#e2e8f0")
	dc.SetLineWidth(1)
	dc.Stroke()

	if img, ok := decodeDataURL(c.Avatar); ok {
		size := 2 * st.ClipRadius
		ib := img.Bounds()
		dc.Push()
		dc.DrawCircle(ax, ay, st.ClipRadius)
		dc.Clip()
		dc.Translate(ax-st.ClipRadius, ay-st.ClipRadius)
		dc.Scale(size/float64(ib.Dx()), size/float64(ib.Dy()))
		dc.DrawImage(img, -ib.Min.X, -ib.Min.Y)
		dc.ResetClip()
		dc.Pop()
	} else {
		// 远程头像不在导出时下载，使用按ID确定的占位色块
		dc.DrawCircle(ax, ay, st.ClipRadius)
		dc.SetHexColor(placeholderColor(c.PersonID))
		dc.Fill()
		dc.SetHexColor("#334155")
		dc.DrawStringAnchored(c.Initials, ax, ay, 0.5, 0.35)
	}

	textX := c.X - hw + st.TextOffset
	dc.SetHexColor("#1e293b")
	dc.DrawStringAnchored(c.Name, textX, c.Y-5, 0, 0.5)
	dc.SetHexColor("#64748b")
	dc.DrawStringAnchored(c.Years, textX, c.Y+15, 0, 0.5)
}

func placeholderColor(id string) string {
	h := fnv.New32a()
	h.Write([]byte(id))
	return placeholderPalette[h.Sum32()%uint32(len(placeholderPalette))]
}

// decodeDataURL 解析上传时保存的 data:image/...;base64, 头像
func decodeDataURL(s string) (image.Image, bool) {
	if !strings.HasPrefix(s, "data:image/") {
		return nil, false
	}
	i := strings.Index(s, ";base64,")
	if i < 0 {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(s[i+len(";base64,"):])
	if err != nil {
		return nil, false
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil || img.Bounds().Empty() {
		return nil, false
	}
	return img, true
}
