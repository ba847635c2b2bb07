package dto

import (
	"time"

	"guestlink/internal/model"
)

// CreateGuestLinkRequest 创建游客短链的请求参数
type CreateGuestLinkRequest struct {
	URL string `json:"url" binding:"required,httpurl" msg_required:"error.url_required" msg_httpurl:"error.url_invalid"`
}

// GuestSettingRequest 按短码修改确认页开关的请求参数
type GuestSettingRequest struct {
	Code       string     `json:"code" binding:"required" msg:"error.setting_invalid_code"`
	UseLanding *FlagInput `json:"useLanding" binding:"required" msg:"error.setting_invalid_code"`
}

// LinkSettingRequest 按 id 修改确认页开关的请求参数
type LinkSettingRequest struct {
	UseLanding *FlagInput `json:"useLanding" binding:"required" msg:"error.setting_invalid_id"`
}

// ResolveResponse 短码解析结果
type ResolveResponse struct {
	URL        string `json:"url"`
	UseLanding bool   `json:"useLanding"`
}

// URLInfoResponse 确认页使用的目标地址
type URLInfoResponse struct {
	OriginalURL string `json:"originalUrl"`
}

// LinkView 链接记录加上完整短链
type LinkView struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	ShortURL   string    `json:"shortUrl"`
	ShortLink  string    `json:"shortLink"`
	Title      string    `json:"title"`
	Logo       string    `json:"logo"`
	UseLanding bool      `json:"useLanding"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewLinkView 构造返回给客户端的视图，baseURL 不带结尾斜杠，为空时短链为相对路径
func NewLinkView(link *model.GuestURL, baseURL string) *LinkView {
	return &LinkView{
		ID:         link.ID,
		URL:        link.URL,
		ShortURL:   link.ShortURL,
		ShortLink:  baseURL + "/" + link.ShortURL,
		Title:      link.Title,
		Logo:       link.Logo,
		UseLanding: bool(link.UseLanding),
		CreatedAt:  link.CreatedAt,
		UpdatedAt:  link.UpdatedAt,
	}
}
