package i18n

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Translator 持有翻译 bundle，为每个请求选择语言
type Translator struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
	tags    []language.Tag
}

// New 加载内嵌的全部语言文件，defaultLang 必须存在，匹配不到语言或缺少翻译时使用
func New(defaultLang string) (*Translator, error) {
	defaultTag, err := language.Parse(defaultLang)
	if err != nil {
		return nil, fmt.Errorf("default language %q: %w", defaultLang, err)
	}

	bundle := i18n.NewBundle(defaultTag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	tags := []language.Tag{defaultTag}
	found := false
	for _, entry := range entries {
		path := "locales/" + entry.Name()
		file, err := localeFS.ReadFile(path)
		if err != nil {
			return nil, err
		}
		mf, err := bundle.ParseMessageFileBytes(file, path)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if mf.Tag == defaultTag {
			found = true
			continue
		}
		tags = append(tags, mf.Tag)
	}
	if !found {
		return nil, fmt.Errorf("no locale file for default language %q", defaultLang)
	}

	return &Translator{
		bundle:  bundle,
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

// Languages 支持的语言，默认语言排第一
func (t *Translator) Languages() []string {
	langs := make([]string, 0, len(t.tags))
	for _, tag := range t.tags {
		langs = append(langs, tag.String())
	}
	return langs
}

// Match 按 Accept-Language 选出最接近的支持语言
func (t *Translator) Match(acceptLanguage string) string {
	_, idx := language.MatchStrings(t.matcher, acceptLanguage)
	return t.tags[idx].String()
}

// Localizer 根据 Accept-Language 创建 localizer
func (t *Translator) Localizer(acceptLanguage string) *i18n.Localizer {
	return i18n.NewLocalizer(t.bundle, t.Match(acceptLanguage))
}

// Localize 翻译 messageID，找不到翻译时返回 id 本身
func Localize(l *i18n.Localizer, messageID string, data map[string]interface{}) string {
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}
