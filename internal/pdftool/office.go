package pdftool

import "github.com/weiwangfds/pdftoolkit/internal/errors"

// WordToPDF 只校验文件类型，服务端暂不提供 Word 转换
func WordToPDF(in Input) ([]byte, error) {
	if !IsWord(in.Name) {
		return nil, errors.ErrInvalidFileTypeError.WithDetails("Only .docx and .doc files are supported")
	}
	return nil, errors.ErrConversionUnavailableError.WithDetails("Word to PDF conversion is not available on this server")
}

// PowerPointToPDF 只校验文件类型，服务端暂不提供 PowerPoint 转换
func PowerPointToPDF(in Input) ([]byte, error) {
	if !IsPowerPoint(in.Name) {
		return nil, errors.ErrInvalidFileTypeError.WithDetails("Only .pptx and .ppt files are supported")
	}
	return nil, errors.ErrConversionUnavailableError.WithDetails("PowerPoint to PDF conversion is not available on this server")
}
