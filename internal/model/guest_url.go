package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestURL 唯一的持久化实体：短码 -> 目标地址及元数据
type GuestURL struct {
	ID         string      `gorm:"column:id;primaryKey;size:36" json:"id"`
	URL        string      `gorm:"column:url;size:2048;not null" json:"url"`
	ShortURL   string      `gorm:"column:shortUrl;uniqueIndex;size:32;not null" json:"shortUrl"`
	Title      string      `gorm:"column:title;size:512" json:"title"`
	Logo       string      `gorm:"column:logo;size:2048" json:"logo"`
	UseLanding LandingFlag `gorm:"column:useLanding;type:varchar(5);not null" json:"useLanding"`
	CreatedAt  time.Time   `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt  time.Time   `gorm:"column:updatedAt" json:"updatedAt"`
	// MetadataCheckedAt 最近一次补抓元数据的时间，只用于补抓任务排序
	MetadataCheckedAt *time.Time `gorm:"column:metadataCheckedAt;index" json:"-"`
}

func (GuestURL) TableName() string {
	return "guesturl"
}

// BeforeCreate 生成管理用 id，调用方不能指定
func (g *GuestURL) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
