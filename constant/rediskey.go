package constant

import (
	"fmt"
)

const (
	BasePrefix = "guestlink:"
	Separator  = ":"
)

// Redis 键模板
const (
	LinkByCode = BasePrefix + "link" + Separator + "%s" // guestlink:link:{code}
)

// GetLinkCacheKey 生成短码的跳转缓存键
func GetLinkCacheKey(shortCode string) string {
	return fmt.Sprintf(LinkByCode, shortCode)
}
