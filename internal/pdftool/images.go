package pdftool

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"
	"strings"

	// 注册标准库解码器，用于读取尺寸
	_ "image/gif"
	_ "image/jpeg"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/weiwangfds/pdftoolkit/internal/errors"
)

// Orientation 页面方向
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// PageSize 纸张规格
type PageSize string

const (
	PageSizeA4     PageSize = "A4"
	PageSizeLetter PageSize = "Letter"
)

// FitMode 图片缩放方式
type FitMode string

const (
	FitContain FitMode = "contain" // 完整显示，可能留白
	FitCover   FitMode = "cover"   // 填满可绘制区域，超出部分裁剪
)

// Alignment 图片在页面中的对齐方式
type Alignment string

const (
	AlignTopLeft      Alignment = "top-left"
	AlignTopCenter    Alignment = "top-center"
	AlignTopRight     Alignment = "top-right"
	AlignCenterLeft   Alignment = "center-left"
	AlignCenter       Alignment = "center"
	AlignCenterRight  Alignment = "center-right"
	AlignBottomLeft   Alignment = "bottom-left"
	AlignBottomCenter Alignment = "bottom-center"
	AlignBottomRight  Alignment = "bottom-right"
)

// DefaultMarginMM 未指定页边距时的默认值
const DefaultMarginMM = 10.0

// ImageToPDFOptions 图片转PDF的版式参数，零值使用默认值
type ImageToPDFOptions struct {
	Orientation Orientation
	PageSize    PageSize
	MarginMM    *float64
	FitMode     FitMode
	Alignment   Alignment
}

// Placement 图片在页面上的位置和尺寸，单位毫米
type Placement struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// layout 填充默认值后的版式
type layout struct {
	orientation Orientation
	pageSize    PageSize
	margin      float64
	fit         FitMode
	align       Alignment
	pageW       float64
	pageH       float64
}

func (o ImageToPDFOptions) resolve() (*layout, error) {
	l := &layout{
		orientation: o.Orientation,
		pageSize:    o.PageSize,
		margin:      DefaultMarginMM,
		fit:         o.FitMode,
		align:       o.Alignment,
	}
	if l.orientation == "" {
		l.orientation = OrientationPortrait
	}
	if l.pageSize == "" {
		l.pageSize = PageSizeA4
	}
	if l.fit == "" {
		l.fit = FitContain
	}
	if l.align == "" {
		l.align = AlignCenter
	}
	if o.MarginMM != nil {
		l.margin = *o.MarginMM
	}

	switch l.orientation {
	case OrientationPortrait, OrientationLandscape:
	default:
		return nil, errors.ErrInvalidLayoutOptionError.WithDetailsf("orientation: %s", l.orientation)
	}
	switch l.fit {
	case FitContain, FitCover:
	default:
		return nil, errors.ErrInvalidLayoutOptionError.WithDetailsf("fit mode: %s", l.fit)
	}
	switch l.align {
	case AlignTopLeft, AlignTopCenter, AlignTopRight,
		AlignCenterLeft, AlignCenter, AlignCenterRight,
		AlignBottomLeft, AlignBottomCenter, AlignBottomRight:
	default:
		return nil, errors.ErrInvalidLayoutOptionError.WithDetailsf("alignment: %s", l.align)
	}

	switch l.pageSize {
	case PageSizeA4:
		l.pageW, l.pageH = 210, 297
	case PageSizeLetter:
		l.pageW, l.pageH = 215.9, 279.4
	default:
		return nil, errors.ErrInvalidLayoutOptionError.WithDetailsf("page size: %s", l.pageSize)
	}
	if l.orientation == OrientationLandscape {
		l.pageW, l.pageH = l.pageH, l.pageW
	}

	if math.IsNaN(l.margin) || l.margin < 0 {
		return nil, errors.ErrInvalidMarginNegativeError
	}
	if l.margin*2 >= l.pageW || l.margin*2 >= l.pageH {
		return nil, errors.ErrInvalidMarginTooLargeError
	}
	return l, nil
}

func (l *layout) place(imgW, imgH float64) Placement {
	maxW := l.pageW - 2*l.margin
	maxH := l.pageH - 2*l.margin
	ratio := imgW / imgH

	w := maxW
	h := maxW / ratio
	if l.fit == FitContain && h > maxH {
		h = maxH
		w = maxH * ratio
	}
	if l.fit == FitCover && h < maxH {
		h = maxH
		w = maxH * ratio
	}

	p := Placement{Width: w, Height: h}
	a := string(l.align)
	switch {
	case strings.Contains(a, "left"):
		p.X = l.margin
	case strings.Contains(a, "right"):
		p.X = l.pageW - l.margin - w
	default:
		p.X = (l.pageW - w) / 2
	}
	switch {
	case strings.Contains(a, "top"):
		p.Y = l.margin
	case strings.Contains(a, "bottom"):
		p.Y = l.pageH - l.margin - h
	default:
		p.Y = (l.pageH - h) / 2
	}
	return p
}

// ComputePlacement 计算指定像素尺寸的图片在页面上的位置
func ComputePlacement(imgW, imgH int, opts ImageToPDFOptions) (Placement, error) {
	l, err := opts.resolve()
	if err != nil {
		return Placement{}, err
	}
	if imgW <= 0 || imgH <= 0 {
		return Placement{}, errors.ErrImageProcessingFailedError.WithDetailsf("invalid image size %dx%d", imgW, imgH)
	}
	return l.place(float64(imgW), float64(imgH)), nil
}

// ImagesToPDF 每张图片生成一页，按输入顺序排列
func ImagesToPDF(ctx context.Context, images []Input, opts ImageToPDFOptions, progress ProgressFunc) ([]byte, error) {
	if len(images) == 0 {
		return nil, errors.ErrNoFilesError
	}
	l, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	orientation := "P"
	if l.orientation == OrientationLandscape {
		orientation = "L"
	}
	pdf := fpdf.New(orientation, "mm", string(l.pageSize), "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	n := len(images)
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !IsImage(img) {
			return nil, errors.ErrInvalidFileTypeError.WithDetailsf("Invalid file type: %s. Only image files are supported.", img.Name)
		}
		if err := addImagePage(pdf, l, i, img); err != nil {
			return nil, errors.ErrImageProcessingFailedError.WithDetailsf("Failed to process image %q: %v", img.Name, err)
		}
		progress.report(int(math.Round(float64(i+1) / float64(n) * 95)))
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, errors.ErrPDFProcessingFailedError.WithOriginalError(err)
	}
	progress.report(100)
	return out.Bytes(), nil
}

func addImagePage(pdf *fpdf.Fpdf, l *layout, index int, img Input) error {
	data, imageType, err := normalizeImage(img.Data)
	if err != nil {
		return err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("empty image")
	}

	name := "img" + strconv.Itoa(index)
	imgOpts := fpdf.ImageOptions{ImageType: imageType, AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(data))
	if pdf.Err() {
		return pdf.Error()
	}

	p := l.place(float64(cfg.Width), float64(cfg.Height))
	pdf.AddPage()
	if l.fit == FitCover {
		pdf.ClipRect(l.margin, l.margin, l.pageW-2*l.margin, l.pageH-2*l.margin, false)
	}
	pdf.ImageOptions(name, p.X, p.Y, p.Width, p.Height, false, imgOpts, 0, "")
	if l.fit == FitCover {
		pdf.ClipEnd()
	}
	return pdf.Error()
}

// normalizeImage 返回 fpdf 可直接嵌入的数据和类型
// JPEG、GIF 和 8位非隔行 PNG 原样使用，其余格式解码后转为 PNG
func normalizeImage(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty file")
	}
	switch format := sniffImageFormat(data); format {
	case "jpeg":
		return data, "JPG", nil
	case "gif":
		return data, "GIF", nil
	case "png":
		if pngNeedsReencode(data) {
			src, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, "", err
			}
			return encodePNG(src)
		}
		return data, "PNG", nil
	case "webp", "bmp", "tiff":
		src, err := decodeExtra(format, data)
		if err != nil {
			return nil, "", err
		}
		return encodePNG(src)
	default:
		return nil, "", fmt.Errorf("unsupported image format")
	}
}

func sniffImageFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "jpeg"
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "gif"
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp"
	case bytes.HasPrefix(data, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tiff"
	}
	return ""
}

// pngNeedsReencode fpdf 不支持16位和隔行扫描的 PNG
// IHDR 第24字节为位深，第28字节为隔行标志
func pngNeedsReencode(data []byte) bool {
	if len(data) < 29 {
		return true
	}
	return data[24] > 8 || data[28] != 0
}

func decodeExtra(format string, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case "webp":
		return webp.Decode(r)
	case "bmp":
		return bmp.Decode(r)
	default:
		return tiff.Decode(r)
	}
}

// encodePNG 转为8位 NRGBA 后编码
func encodePNG(src image.Image) ([]byte, string, error) {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "PNG", nil
}
