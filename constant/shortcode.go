package constant

// 短码格式：固定 CodeLength 位，字符取自 CodeAlphabet
const (
	CodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CodeLength   = 8
)

// 抓取不到目标页面元数据时写入的占位值
const (
	NoTitle = "No title found"
	NoLogo  = "No logo found"
)

// MaxTargetURLLength 目标地址最大长度，与 url 列一致
const MaxTargetURLLength = 2048
