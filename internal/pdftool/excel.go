package pdftool

import (
	"bytes"
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/weiwangfds/pdftoolkit/internal/errors"
)

// 表格渲染参数，单位毫米
const (
	sheetTitleFontSize = 14
	sheetRowFontSize   = 8
	sheetLineHeight    = 5
	sheetLeft          = 10
	sheetRowStartY     = 20
	sheetContinueY     = 10

	sheetFontFamily = "goregular"
)

// bmpText 把 fpdf UTF-8 字宽表（仅覆盖 BMP）之外的字符替换成 '?'
func bmpText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF || r == utf8.RuneError {
			return '?'
		}
		return r
	}, strings.ToValidUTF8(s, "?"))
}

// sheetHasContent 判断工作表是否至少有一个非空行
func sheetHasContent(rows [][]string) bool {
	for _, row := range rows {
		if len(row) > 0 {
			return true
		}
	}
	return false
}

func openWorkbook(in Input) (*excelize.File, error) {
	if !IsExcel(in.Name) {
		return nil, errors.ErrInvalidFileTypeError.WithDetails("Only .xlsx and .xls files are supported")
	}
	f, err := excelize.OpenReader(in.reader())
	if err != nil {
		return nil, errors.ErrPDFProcessingFailedError.WithOriginalError(err)
	}
	return f, nil
}

// ListWorksheets 按工作簿顺序返回工作表名称
func ListWorksheets(in Input) ([]string, error) {
	f, err := openWorkbook(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ExcelToPDF 把选中的工作表逐行渲染为文本，每个工作表从新的一页开始
// orientation 为空时使用横向
func ExcelToPDF(ctx context.Context, in Input, sheets []string, orientation Orientation, progress ProgressFunc) ([]byte, error) {
	if len(in.Data) == 0 {
		return nil, errors.ErrNoFilesError
	}
	if orientation == "" {
		orientation = OrientationLandscape
	}
	if orientation != OrientationPortrait && orientation != OrientationLandscape {
		return nil, errors.ErrInvalidLayoutOptionError.WithDetailsf("orientation: %s", orientation)
	}

	f, err := openWorkbook(in)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, errors.ErrNoWorksheetsError
	}
	if len(sheets) == 0 {
		return nil, errors.ErrNoSheetsSelectedError
	}
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}
	for _, name := range sheets {
		if !known[name] {
			return nil, errors.ErrWorksheetNotFoundError.WithDetailsf("Worksheet %q not found", name)
		}
	}

	orientationStr, maxWidth, bottom := "L", 277.0, 190.0
	if orientation == OrientationPortrait {
		orientationStr, maxWidth, bottom = "P", 190.0, 280.0
	}

	pdf := fpdf.New(orientationStr, "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	// 内嵌 UTF-8 字体，单元格和工作表名按原文绘制
	pdf.AddUTF8FontFromBytes(sheetFontFamily, "", goregular.TTF)
	pdf.SetFont(sheetFontFamily, "", sheetRowFontSize)

	n := len(sheets)
	for i, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, errors.ErrPDFProcessingFailedError.WithOriginalError(err)
		}
		// 空工作表不输出页面
		if !sheetHasContent(rows) {
			progress.report(int(math.Round(float64(i+1) / float64(n) * 95)))
			continue
		}

		pdf.AddPage()
		pdf.SetFontSize(sheetTitleFontSize)
		pdf.Text(sheetLeft, 10, bmpText(name))

		pdf.SetFontSize(sheetRowFontSize)
		y := float64(sheetRowStartY)
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			if y > bottom {
				pdf.AddPage()
				y = sheetContinueY
			}
			for _, line := range pdf.SplitText(bmpText(strings.Join(row, " | ")), maxWidth) {
				pdf.Text(sheetLeft, y, line)
				y += sheetLineHeight
			}
		}
		progress.report(int(math.Round(float64(i+1) / float64(n) * 95)))
	}

	if pdf.Err() {
		return nil, errors.ErrPDFProcessingFailedError.WithOriginalError(pdf.Error())
	}
	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, errors.ErrPDFProcessingFailedError.WithOriginalError(err)
	}
	progress.report(100)
	return out.Bytes(), nil
}
