package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	i := GetInstance()

	assert.Equal(t, "This PDF is not password-protected.", i.Translate("not_password_protected", LangEnUS))
	assert.Equal(t, "该PDF未设置密码保护", i.Translate("not_password_protected", LangZhCN))
	assert.Equal(t, "Este PDF no está protegido con contraseña.", i.Translate("not_password_protected", LangEsES))

	// 不支持的语言回退到默认语言
	assert.Equal(t, i.Translate("success", i.GetDefaultLanguage()), i.Translate("success", "fr-FR"))
	// 缺失的键原样返回
	assert.Equal(t, "no_such_key", i.Translate("no_such_key", LangEnUS))
}

func TestAllLanguagesShareKeys(t *testing.T) {
	base := translations[LangEnUS]
	for lang, table := range translations {
		for key := range base {
			_, ok := table[key]
			assert.Truef(t, ok, "%s 缺少翻译键 %s", lang, key)
		}
		assert.Len(t, table, len(base), lang)
	}
}

func TestNormalizeAndAcceptLanguage(t *testing.T) {
	i := GetInstance()

	assert.Equal(t, LangEsES, i.Normalize("es-MX"))
	assert.Equal(t, LangZhCN, i.Normalize("zh_TW"))
	assert.Equal(t, LangEnUS, i.Normalize("en"))
	assert.Equal(t, i.GetDefaultLanguage(), i.Normalize(""))

	assert.Equal(t, LangEsES, i.ParseAcceptLanguage("fr-CH, es;q=0.9, en;q=0.8"))
	assert.Equal(t, LangZhCN, i.ParseAcceptLanguage("zh-CN,zh;q=0.9"))
	assert.Equal(t, i.GetDefaultLanguage(), i.ParseAcceptLanguage("fr, de"))
}

func TestSupportedLanguages(t *testing.T) {
	i := GetInstance()
	assert.Equal(t, []string{LangEnUS, LangEsES, LangZhCN}, i.GetSupportedLanguages())

	i.SetDefaultLanguage("xx-XX")
	assert.Equal(t, LangEnUS, i.GetDefaultLanguage())
}
