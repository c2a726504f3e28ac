package pdftool

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/weiwangfds/pdftoolkit/internal/errors"
)

// samplePDF 生成指定页数的PDF
func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Text(20, 20, fmt.Sprintf("page %d", i))
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pages(t *testing.T, data []byte) int {
	t.Helper()
	n, err := PageCount(context.Background(), Input{Name: "x.pdf", Data: data})
	require.NoError(t, err)
	return n
}

func recorder() (*[]int, ProgressFunc) {
	var got []int
	return &got, func(p int) { got = append(got, p) }
}

func TestDetection(t *testing.T) {
	pdfData := samplePDF(t, 1)

	t.Run("PDF识别", func(t *testing.T) {
		assert.True(t, IsPDF(Input{Name: "a.PDF"}))
		assert.True(t, IsPDF(Input{Name: "a", ContentType: "application/pdf"}))
		assert.True(t, IsPDF(Input{Name: "blob", Data: pdfData}))
		assert.False(t, IsPDF(Input{Name: "a.txt", Data: []byte("hello")}))
	})

	t.Run("图片识别", func(t *testing.T) {
		assert.True(t, IsImage(Input{Name: "a", ContentType: "image/webp"}))
		assert.True(t, IsImage(Input{Name: "a", Data: samplePNG(t, 2, 2)}))
		assert.False(t, IsImage(Input{Name: "a.pdf", Data: pdfData}))
	})

	t.Run("扩展名", func(t *testing.T) {
		assert.True(t, IsExcel("report.XLSX"))
		assert.True(t, IsWord("a.doc"))
		assert.True(t, IsPowerPoint("deck.pptx"))
		assert.False(t, IsWord("a.pdf"))
	})
}

func TestMerge(t *testing.T) {
	ctx := context.Background()

	t.Run("参数校验", func(t *testing.T) {
		_, err := Merge(ctx, nil, nil)
		assert.True(t, errors.Is(err, errors.ErrNoFilesError))

		_, err = Merge(ctx, []Input{{Name: "a.pdf", Data: samplePDF(t, 1)}}, nil)
		assert.True(t, errors.Is(err, errors.ErrMergeNeedsTwoError))

		_, err = Merge(ctx, []Input{
			{Name: "a.pdf", Data: samplePDF(t, 1)},
			{Name: "notes.txt", Data: []byte("plain text")},
		}, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidFileTypeError))
		assert.Contains(t, err.Error(), "notes.txt")
	})

	t.Run("页数相加且进度单调", func(t *testing.T) {
		got, progress := recorder()
		out, err := Merge(ctx, []Input{
			{Name: "a.pdf", Data: samplePDF(t, 2)},
			{Name: "b.pdf", Data: samplePDF(t, 3)},
			{Name: "c.pdf", Data: samplePDF(t, 1)},
		}, progress)
		require.NoError(t, err)
		assert.Equal(t, 6, pages(t, out))
		assert.Equal(t, []int{33, 67, 100}, *got)
	})

	t.Run("损坏的文件", func(t *testing.T) {
		_, err := Merge(ctx, []Input{
			{Name: "a.pdf", Data: samplePDF(t, 1)},
			{Name: "broken.pdf", Data: []byte("%PDF-1.4 garbage")},
		}, nil)
		assert.True(t, errors.Is(err, errors.ErrPDFProcessingFailedError))
	})
}

func TestSplit(t *testing.T) {
	ctx := context.Background()
	src := Input{Name: "report.PDF", Data: samplePDF(t, 5)}

	t.Run("范围拆分", func(t *testing.T) {
		got, progress := recorder()
		results, err := Split(ctx, src, SplitOptions{Mode: SplitModeRange, StartPage: 2, EndPage: 4}, progress)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "report_pages_2-4.pdf", results[0].FileName)
		assert.Equal(t, 3, pages(t, results[0].Data))
		assert.Equal(t, []int{10, 20, 30, 80, 100}, *got)
	})

	t.Run("范围默认值", func(t *testing.T) {
		results, err := Split(ctx, src, SplitOptions{Mode: SplitModeRange}, nil)
		require.NoError(t, err)
		assert.Equal(t, "report_pages_1-5.pdf", results[0].FileName)
		assert.Equal(t, 5, pages(t, results[0].Data))
	})

	t.Run("无效范围", func(t *testing.T) {
		cases := []struct {
			start, end int
			details    string
		}{
			{6, 6, "Invalid start page: 6. Must be between 1 and 5."},
			{1, 9, "Invalid end page: 9. Must be between 1 and 5."},
			{-1, 2, "Invalid start page: -1. Must be between 1 and 5."},
			{4, 2, "Start page (4) cannot be greater than end page (2)."},
		}
		for _, tc := range cases {
			_, err := Split(ctx, src, SplitOptions{Mode: SplitModeRange, StartPage: tc.start, EndPage: tc.end}, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidPageRangeError))
			assert.Contains(t, err.Error(), tc.details)
		}
	})

	t.Run("逐页拆分", func(t *testing.T) {
		got, progress := recorder()
		results, err := Split(ctx, src, SplitOptions{Mode: SplitModePerPage}, progress)
		require.NoError(t, err)
		require.Len(t, results, 5)
		for i, r := range results {
			assert.Equal(t, fmt.Sprintf("report_page_%d.pdf", i+1), r.FileName)
			assert.Equal(t, 1, pages(t, r.Data))
		}
		assert.Equal(t, []int{10, 20, 30, 44, 58, 72, 86, 100}, *got)
	})

	t.Run("拆分后合并页数不变", func(t *testing.T) {
		results, err := Split(ctx, src, SplitOptions{Mode: SplitModePerPage}, nil)
		require.NoError(t, err)
		inputs := make([]Input, 0, len(results))
		for _, r := range results {
			inputs = append(inputs, Input{Name: r.FileName, Data: r.Data})
		}
		merged, err := Merge(ctx, inputs, nil)
		require.NoError(t, err)
		assert.Equal(t, 5, pages(t, merged))
	})

	t.Run("未知模式", func(t *testing.T) {
		_, err := Split(ctx, src, SplitOptions{Mode: "odd"}, nil)
		assert.True(t, errors.Is(err, errors.ErrSplitModeInvalidError))
	})

	t.Run("输入未被修改", func(t *testing.T) {
		before := append([]byte(nil), src.Data...)
		_, err := Split(ctx, src, SplitOptions{Mode: SplitModePerPage}, nil)
		require.NoError(t, err)
		assert.Equal(t, before, src.Data)
	})
}

func TestCompress(t *testing.T) {
	got, progress := recorder()
	out, err := Compress(context.Background(), Input{Name: "a.pdf", Data: samplePDF(t, 3)}, progress)
	require.NoError(t, err)
	assert.Equal(t, 3, pages(t, out))
	assert.Equal(t, []int{10, 30, 60, 90, 100}, *got)

	_, err = Compress(context.Background(), Input{Name: "a.png", Data: samplePNG(t, 2, 2)}, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidFileTypeError))
}

func TestRotate(t *testing.T) {
	ctx := context.Background()
	src := Input{Name: "a.pdf", Data: samplePDF(t, 2)}

	t.Run("无效角度", func(t *testing.T) {
		_, err := Rotate(ctx, src, 45, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidRotationError))
	})

	t.Run("在当前角度上累加", func(t *testing.T) {
		got, progress := recorder()
		once, err := Rotate(ctx, src, 90, progress)
		require.NoError(t, err)
		assert.Equal(t, []int{10, 30, 50, 70, 90, 90, 95, 100}, *got)

		twice, err := Rotate(ctx, Input{Name: "a.pdf", Data: once}, 270, nil)
		require.NoError(t, err)

		for data, want := range map[*[]byte]int{&once: 90, &twice: 0} {
			pdfCtx, err := api.ReadContext(bytes.NewReader(*data), newConfig())
			require.NoError(t, err)
			for i := 1; i <= pdfCtx.PageCount; i++ {
				d, _, inh, err := pdfCtx.PageDict(i, false)
				require.NoError(t, err)
				rotation := inh.Rotate
				if r := d.IntEntry("Rotate"); r != nil {
					rotation = *r
				}
				assert.Equal(t, want, rotation)
			}
		}
	})
}

func TestProtect(t *testing.T) {
	ctx := context.Background()
	plain := Input{Name: "a.pdf", Data: samplePDF(t, 2)}

	t.Run("参数校验", func(t *testing.T) {
		_, err := Protect(ctx, plain, ProtectOptions{Mode: ProtectModeAdd}, nil)
		assert.True(t, errors.Is(err, errors.ErrPasswordRequiredError))

		_, err = Protect(ctx, plain, ProtectOptions{Mode: ProtectModeRemove, Password: "x"}, nil)
		assert.True(t, errors.Is(err, errors.ErrCurrentPasswordRequiredError))

		_, err = Protect(ctx, plain, ProtectOptions{Mode: ProtectModeRemove}, nil)
		assert.True(t, errors.Is(err, errors.ErrPasswordRequiredError))

		_, err = Protect(ctx, plain, ProtectOptions{Mode: "lock", Password: "x"}, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidProtectModeError))

		_, err = Protect(ctx, Input{Name: "a.png", Data: samplePNG(t, 2, 2)}, ProtectOptions{Mode: ProtectModeAdd, Password: "x"}, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidFileTypeError))
	})

	t.Run("加密后解密", func(t *testing.T) {
		got, progress := recorder()
		locked, err := Protect(ctx, plain, ProtectOptions{Mode: ProtectModeAdd, Password: "s3cret"}, progress)
		require.NoError(t, err)
		assert.Equal(t, []int{10, 30, 50, 70, 100}, *got)

		_, err = PageCount(ctx, Input{Name: "a.pdf", Data: locked})
		assert.Error(t, err)

		_, err = Protect(ctx, Input{Name: "a.pdf", Data: locked}, ProtectOptions{Mode: ProtectModeRemove, CurrentPassword: "wrong"}, nil)
		assert.True(t, errors.Is(err, errors.ErrIncorrectPasswordError))

		// 移除模式不需要新密码
		unlocked, err := Protect(ctx, Input{Name: "a.pdf", Data: locked}, ProtectOptions{Mode: ProtectModeRemove, CurrentPassword: "s3cret"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, pages(t, unlocked))

		// 多给的新密码被忽略，只用当前密码解密
		unlocked, err = Protect(ctx, Input{Name: "a.pdf", Data: locked}, ProtectOptions{Mode: ProtectModeRemove, Password: "ignored", CurrentPassword: "s3cret"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, pages(t, unlocked))
	})

	t.Run("重复加密", func(t *testing.T) {
		locked, err := Protect(ctx, plain, ProtectOptions{Mode: ProtectModeAdd, Password: "one"}, nil)
		require.NoError(t, err)
		_, err = Protect(ctx, Input{Name: "a.pdf", Data: locked}, ProtectOptions{Mode: ProtectModeAdd, Password: "two"}, nil)
		assert.True(t, errors.Is(err, errors.ErrAlreadyPasswordProtectedError))
	})

	t.Run("未加密的文件", func(t *testing.T) {
		_, err := Protect(ctx, plain, ProtectOptions{Mode: ProtectModeRemove, CurrentPassword: "x"}, nil)
		assert.True(t, errors.Is(err, errors.ErrNotPasswordProtectedError))
	})
}

func margin(v float64) *float64 { return &v }

func TestComputePlacement(t *testing.T) {
	t.Run("页边距校验", func(t *testing.T) {
		_, err := ComputePlacement(100, 100, ImageToPDFOptions{MarginMM: margin(-1)})
		assert.True(t, errors.Is(err, errors.ErrInvalidMarginNegativeError))

		_, err = ComputePlacement(100, 100, ImageToPDFOptions{MarginMM: margin(105)})
		assert.True(t, errors.Is(err, errors.ErrInvalidMarginTooLargeError))

		_, err = ComputePlacement(100, 100, ImageToPDFOptions{MarginMM: margin(104.9)})
		assert.NoError(t, err)

		_, err = ComputePlacement(100, 100, ImageToPDFOptions{Orientation: OrientationLandscape, MarginMM: margin(105)})
		assert.True(t, errors.Is(err, errors.ErrInvalidMarginTooLargeError))
	})

	t.Run("默认居中适应", func(t *testing.T) {
		p, err := ComputePlacement(100, 100, ImageToPDFOptions{})
		require.NoError(t, err)
		assert.InDelta(t, 190, p.Width, 1e-9)
		assert.InDelta(t, 190, p.Height, 1e-9)
		assert.InDelta(t, 10, p.X, 1e-9)
		assert.InDelta(t, 53.5, p.Y, 1e-9)
	})

	t.Run("高图按高度缩放", func(t *testing.T) {
		p, err := ComputePlacement(100, 400, ImageToPDFOptions{Alignment: AlignTopRight})
		require.NoError(t, err)
		assert.InDelta(t, 277, p.Height, 1e-9)
		assert.InDelta(t, 69.25, p.Width, 1e-9)
		assert.InDelta(t, 210-10-69.25, p.X, 1e-9)
		assert.InDelta(t, 10, p.Y, 1e-9)
	})

	t.Run("填充模式", func(t *testing.T) {
		p, err := ComputePlacement(400, 100, ImageToPDFOptions{FitMode: FitCover, Alignment: AlignBottomLeft, MarginMM: margin(0)})
		require.NoError(t, err)
		assert.InDelta(t, 297, p.Height, 1e-9)
		assert.InDelta(t, 1188, p.Width, 1e-9)
		assert.InDelta(t, 0, p.X, 1e-9)
		assert.InDelta(t, 0, p.Y, 1e-9)
	})

	t.Run("Letter横向", func(t *testing.T) {
		p, err := ComputePlacement(100, 100, ImageToPDFOptions{PageSize: PageSizeLetter, Orientation: OrientationLandscape, MarginMM: margin(0)})
		require.NoError(t, err)
		assert.InDelta(t, 215.9, p.Height, 1e-9)
		assert.InDelta(t, (279.4-215.9)/2, p.X, 1e-9)
	})

	t.Run("无效选项", func(t *testing.T) {
		_, err := ComputePlacement(1, 1, ImageToPDFOptions{PageSize: "A3"})
		assert.True(t, errors.Is(err, errors.ErrInvalidLayoutOptionError))
		_, err = ComputePlacement(1, 1, ImageToPDFOptions{Alignment: "middle"})
		assert.True(t, errors.Is(err, errors.ErrInvalidLayoutOptionError))
	})
}

func TestImagesToPDF(t *testing.T) {
	ctx := context.Background()

	t.Run("每张图片一页", func(t *testing.T) {
		got, progress := recorder()
		out, err := ImagesToPDF(ctx, []Input{
			{Name: "a.png", ContentType: "image/png", Data: samplePNG(t, 40, 20)},
			{Name: "b.png", Data: samplePNG(t, 20, 40)},
		}, ImageToPDFOptions{FitMode: FitCover}, progress)
		require.NoError(t, err)
		assert.Equal(t, 2, pages(t, out))
		assert.Equal(t, []int{48, 95, 100}, *got)
	})

	t.Run("16位PNG重新编码", func(t *testing.T) {
		img := image.NewNRGBA64(image.Rect(0, 0, 8, 8))
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		require.True(t, pngNeedsReencode(buf.Bytes()))

		out, err := ImagesToPDF(ctx, []Input{{Name: "deep.png", Data: buf.Bytes()}}, ImageToPDFOptions{}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, pages(t, out))
	})

	t.Run("错误", func(t *testing.T) {
		_, err := ImagesToPDF(ctx, nil, ImageToPDFOptions{}, nil)
		assert.True(t, errors.Is(err, errors.ErrNoFilesError))

		_, err = ImagesToPDF(ctx, []Input{{Name: "a.pdf", Data: samplePDF(t, 1)}}, ImageToPDFOptions{}, nil)
		assert.True(t, errors.Is(err, errors.ErrInvalidFileTypeError))

		_, err = ImagesToPDF(ctx, []Input{{Name: "bad.png", ContentType: "image/png", Data: []byte("nope")}}, ImageToPDFOptions{}, nil)
		assert.True(t, errors.Is(err, errors.ErrImageProcessingFailedError))
		assert.Contains(t, err.Error(), `Failed to process image "bad.png"`)
	})
}

func sampleWorkbook(t *testing.T) Input {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "Summary"))
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Summary", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Summary", "B1", "Total"))
	for i := 1; i <= 80; i++ {
		require.NoError(t, f.SetCellValue("Data", fmt.Sprintf("A%d", i), fmt.Sprintf("row %d", i)))
		require.NoError(t, f.SetCellValue("Data", fmt.Sprintf("B%d", i), i*10))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return Input{Name: "book.xlsx", Data: buf.Bytes()}
}

func TestExcel(t *testing.T) {
	ctx := context.Background()
	book := sampleWorkbook(t)

	t.Run("列出工作表", func(t *testing.T) {
		names, err := ListWorksheets(book)
		require.NoError(t, err)
		assert.Equal(t, []string{"Summary", "Data"}, names)
	})

	t.Run("转换", func(t *testing.T) {
		got, progress := recorder()
		out, err := ExcelToPDF(ctx, book, []string{"Summary", "Data"}, "", progress)
		require.NoError(t, err)
		// 横向时 Data 的80行需要翻页
		assert.Greater(t, pages(t, out), 2)
		assert.Equal(t, []int{48, 95, 100}, *got)
	})

	t.Run("选择校验", func(t *testing.T) {
		_, err := ExcelToPDF(ctx, book, nil, OrientationPortrait, nil)
		assert.True(t, errors.Is(err, errors.ErrNoSheetsSelectedError))

		_, err = ExcelToPDF(ctx, book, []string{"Missing"}, OrientationPortrait, nil)
		assert.True(t, errors.Is(err, errors.ErrWorksheetNotFoundError))
		assert.Contains(t, err.Error(), `Worksheet "Missing" not found`)
	})

	t.Run("非ASCII单元格和工作表名", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, f.SetSheetName("Sheet1", "café"))
		_, err := f.NewSheet("名称")
		require.NoError(t, err)
		_, err = f.NewSheet("€")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("café", "A1", "café"))
		require.NoError(t, f.SetCellValue("café", "B1", "€ 12,50"))
		require.NoError(t, f.SetCellValue("名称", "A1", "名称"))
		require.NoError(t, f.SetCellValue("名称", "B1", "数量 😀"))
		require.NoError(t, f.SetCellValue("€", "A1", strings.Repeat("Größe € ", 80)))
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		in := Input{Name: "intl.xlsx", Data: buf.Bytes()}

		for _, orientation := range []Orientation{OrientationLandscape, OrientationPortrait} {
			var out []byte
			require.NotPanics(t, func() {
				out, err = ExcelToPDF(ctx, in, []string{"café", "名称", "€"}, orientation, nil)
			})
			require.NoError(t, err)
			assert.Equal(t, 3, pages(t, out))
		}
	})

	t.Run("跳过空工作表", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		_, err := f.NewSheet("Empty")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "value"))
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		in := Input{Name: "empty.xlsx", Data: buf.Bytes()}

		got, progress := recorder()
		out, err := ExcelToPDF(ctx, in, []string{"Empty", "Sheet1"}, OrientationPortrait, progress)
		require.NoError(t, err)
		assert.Equal(t, 1, pages(t, out))
		assert.Equal(t, []int{48, 95, 100}, *got)
	})

	t.Run("文件类型", func(t *testing.T) {
		_, err := ListWorksheets(Input{Name: "a.csv", Data: []byte("a,b")})
		assert.True(t, errors.Is(err, errors.ErrInvalidFileTypeError))
	})
}

func TestOfficeConversions(t *testing.T) {
	_, err := WordToPDF(Input{Name: "a.docx"})
	assert.True(t, errors.Is(err, errors.ErrConversionUnavailableError))
	_, err = WordToPDF(Input{Name: "a.pptx"})
	assert.True(t, errors.Is(err, errors.ErrInvalidFileTypeError))

	_, err = PowerPointToPDF(Input{Name: "a.ppt"})
	assert.True(t, errors.Is(err, errors.ErrConversionUnavailableError))
	_, err = PowerPointToPDF(Input{Name: "a.doc"})
	assert.True(t, errors.Is(err, errors.ErrInvalidFileTypeError))
}
