package i18n

import (
	"context"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

type localizerKey struct{}

// WithLocalizer 把本次请求的 localizer 放入上下文
func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, l)
}

// FromContext 取出 i18n 中间件放入的 localizer
func FromContext(ctx context.Context) (*i18n.Localizer, bool) {
	l, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	return l, ok && l != nil
}

// T 按请求语言翻译 messageID，没有 localizer 时使用默认语言
func (t *Translator) T(ctx context.Context, messageID string) string {
	l, ok := FromContext(ctx)
	if !ok {
		l = i18n.NewLocalizer(t.bundle, t.tags[0].String())
	}
	return Localize(l, messageID, nil)
}
