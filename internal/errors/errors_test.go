package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/weiwangfds/pdftoolkit/internal/i18n"
)

func TestKeyAndTranslationCoverage(t *testing.T) {
	for code, key := range errorCodeToKeyMap {
		for _, lang := range []string{i18n.LangEnUS, i18n.LangZhCN, i18n.LangEsES} {
			msg := GetErrorMessageWithLang(code, lang)
			assert.NotEqualf(t, key, msg, "错误码 %d 在 %s 下缺少翻译", code, lang)
		}
	}
	assert.Equal(t, "INVALID_MARGIN_NEGATIVE", ErrInvalidMarginNegativeError.Key())
	assert.Equal(t, "UNKNOWN_ERROR", Key(ErrorCode(99999)))
}

func TestWithDetailsDoesNotMutateSentinel(t *testing.T) {
	derived := ErrInvalidFileTypeError.WithDetailsf("%s is not a PDF", "a.txt")

	assert.Empty(t, ErrInvalidFileTypeError.Details)
	assert.Equal(t, "a.txt is not a PDF", derived.Details)
	assert.True(t, Is(derived, ErrInvalidFileTypeError))
	assert.False(t, Is(derived, ErrIncorrectPasswordError))
}

func TestGetAppErrorThroughWrapping(t *testing.T) {
	inner := ErrIncorrectPasswordError.WithOriginalError(fmt.Errorf("pdfcpu: please provide the correct password"))
	wrapped := fmt.Errorf("protect: %w", inner)

	appErr, ok := GetAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrIncorrectPassword, appErr.Code)
	assert.Contains(t, appErr.Details, "correct password")
	assert.True(t, Is(wrapped, ErrIncorrectPasswordError))

	_, ok = GetAppError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrSuccess:               http.StatusOK,
		ErrAuthRequired:          http.StatusUnauthorized,
		ErrAdminRequired:         http.StatusForbidden,
		ErrFileNotFound:          http.StatusNotFound,
		ErrInvalidMarginNegative: http.StatusBadRequest,
		ErrIncorrectPassword:     http.StatusBadRequest,
		ErrConversionUnavailable: http.StatusNotImplemented,
		ErrPDFProcessingFailed:   http.StatusUnprocessableEntity,
		ErrFileSizeTooLarge:      http.StatusRequestEntityTooLarge,
		ErrDatabaseQuery:         http.StatusInternalServerError,
		ErrStorageConfigInUse:    http.StatusBadRequest,
	}
	for code, status := range cases {
		assert.Equalf(t, status, HTTPStatus(code), "code %d", code)
	}
}

func TestLocalizedMessage(t *testing.T) {
	err := ErrWorksheetNotFoundError.WithDetails(`"Q3"`)
	assert.Equal(t, `Worksheet not found: "Q3"`, err.LocalizedMessage(i18n.LangEnUS))
	assert.Equal(t, `Hoja no encontrada: "Q3"`, err.LocalizedMessage(i18n.LangEsES))

	t.Run("内部错误不附带驱动信息", func(t *testing.T) {
		dbErr := ErrDatabaseQueryError.WithOriginalError(fmt.Errorf(`no such table: "files"`))
		assert.True(t, dbErr.Internal())
		assert.NotContains(t, dbErr.LocalizedMessage(i18n.LangEnUS), "no such table")
		assert.Equal(t, GetErrorMessageWithLang(ErrDatabaseQuery, i18n.LangEnUS), dbErr.LocalizedMessage(i18n.LangEnUS))
		// 日志仍可通过 Error/Unwrap 拿到原始错误
		assert.Contains(t, dbErr.Error(), "no such table")
		assert.EqualError(t, dbErr.Unwrap(), `no such table: "files"`)

		storageErr := ErrStorageUploadFailedError.WithOriginalError(fmt.Errorf("oss: AccessDenied bucket=secret"))
		assert.NotContains(t, storageErr.LocalizedMessage(i18n.LangZhCN), "AccessDenied")
	})
}
