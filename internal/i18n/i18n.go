// Package i18n 提供国际化支持
// 负责管理错误消息和接口提示语的多语言翻译
package i18n

import (
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en_US"
	"github.com/go-playground/locales/es_ES"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/weiwangfds/pdftoolkit/internal/logger"
)

// 支持的语言
const (
	LangZhCN = "zh-CN"
	LangEnUS = "en-US"
	LangEsES = "es-ES"
)

var (
	instance *I18n
	once     sync.Once
)

// I18n 国际化管理器
type I18n struct {
	mu          sync.RWMutex
	translators map[string]ut.Translator
	defaultLang string
}

// GetInstance 获取I18n单例
func GetInstance() *I18n {
	once.Do(func() {
		instance = &I18n{
			translators: make(map[string]ut.Translator),
			defaultLang: LangEnUS,
		}
		instance.initTranslators()
	})
	return instance
}

// initTranslators 使用locale库注册支持的语言
func (i *I18n) initTranslators() {
	enUS := en_US.New()
	uni := ut.New(enUS, enUS, zh.New(), es_ES.New())

	langMappings := map[string]string{
		LangZhCN: "zh",
		LangEnUS: "en_US",
		LangEsES: "es_ES",
	}

	for ourLang, localeLang := range langMappings {
		trans, found := uni.GetTranslator(localeLang)
		if !found {
			logger.Errorf("初始化翻译器失败: %s (locale: %s)", ourLang, localeLang)
			continue
		}
		i.translators[ourLang] = trans
	}
	logger.Debugf("国际化翻译器初始化完成，共 %d 种语言", len(i.translators))
}

// Translate 根据键和语言获取翻译
// 语言不支持或缺少翻译时回退到默认语言，仍缺失则返回键本身
func (i *I18n) Translate(key, lang string) string {
	lang = i.Normalize(lang)
	if translation, found := translations[lang][key]; found {
		return translation
	}

	def := i.GetDefaultLanguage()
	if lang != def {
		if translation, found := translations[def][key]; found {
			return translation
		}
	}

	logger.Warnf("未找到翻译: %s, 语言: %s", key, lang)
	return key
}

// Normalize 将 Accept-Language 风格的语言标签映射到支持的语言
// 例如 "es", "es-MX", "en", "zh-Hans" 都能得到对应的语言
func (i *I18n) Normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return i.GetDefaultLanguage()
	}
	if i.IsSupportedLanguage(lang) {
		return lang
	}
	switch strings.ToLower(strings.SplitN(strings.ReplaceAll(lang, "_", "-"), "-", 2)[0]) {
	case "zh":
		return LangZhCN
	case "en":
		return LangEnUS
	case "es":
		return LangEsES
	}
	return i.GetDefaultLanguage()
}

// ParseAcceptLanguage 从 Accept-Language 头中选出第一个支持的语言
func (i *I18n) ParseAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" || tag == "*" {
			continue
		}
		norm := i.Normalize(tag)
		prefix := strings.ToLower(strings.SplitN(norm, "-", 2)[0])
		if strings.HasPrefix(strings.ToLower(tag), prefix) {
			return norm
		}
	}
	return i.GetDefaultLanguage()
}

// SetDefaultLanguage 设置默认语言，不支持的语言会被忽略
func (i *I18n) SetDefaultLanguage(lang string) {
	if !i.IsSupportedLanguage(lang) {
		logger.Warnf("不支持的默认语言: %s", lang)
		return
	}
	i.mu.Lock()
	i.defaultLang = lang
	i.mu.Unlock()
	logger.Infof("设置默认语言为: %s", lang)
}

// GetDefaultLanguage 获取默认语言
func (i *I18n) GetDefaultLanguage() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.defaultLang
}

// IsSupportedLanguage 检查语言是否支持
func (i *I18n) IsSupportedLanguage(lang string) bool {
	_, exists := i.translators[lang]
	return exists
}

// GetSupportedLanguages 获取支持的语言列表
func (i *I18n) GetSupportedLanguages() []string {
	langs := make([]string, 0, len(i.translators))
	for lang := range i.translators {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
