package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"guestlink/constant"
	"guestlink/internal/model"
	"guestlink/internal/repository"
)

// BackfillService 为创建时抓取失败的链接补抓元数据
type BackfillService struct {
	store     repository.LinkStore
	fetcher   Fetcher
	logger    *zap.Logger
	batchSize int
}

func NewBackfillService(store repository.LinkStore, fetcher Fetcher, logger *zap.Logger, batchSize int) *BackfillService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &BackfillService{
		store:     store,
		fetcher:   fetcher,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Schedule 注册定时任务，每次执行的超时按批量大小计算
func (b *BackfillService) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(b.batchSize)*30*time.Second)
		defer cancel()
		if _, err := b.RunOnce(ctx); err != nil {
			b.logger.Error("Metadata backfill failed", zap.Error(err))
		}
	})
}

// RunOnce 处理一批记录，返回补抓成功的条数
// 每条处理过的记录都会标记检查时间，始终失败的链接会排到队尾，不会一直占住批次
func (b *BackfillService) RunOnce(ctx context.Context) (int, error) {
	b.logger.Info("Metadata backfill start")
	links, err := b.store.ListMissingMetadata(ctx, b.batchSize)
	if err != nil {
		return 0, err
	}

	improved := lo.CountBy(links, func(link model.GuestURL) bool {
		if ctx.Err() != nil {
			return false
		}
		return b.backfill(ctx, link)
	})

	b.logger.Info("Metadata backfill end",
		zap.Int("scanned", len(links)),
		zap.Int("improved", improved))
	return improved, ctx.Err()
}

func (b *BackfillService) backfill(ctx context.Context, link model.GuestURL) bool {
	fetched := b.fetcher.Fetch(ctx, link.URL)
	title := mergeField(link.Title, fetched.Title, constant.NoTitle)
	logo := mergeField(link.Logo, fetched.Logo, constant.NoLogo)
	changed := title != link.Title || logo != link.Logo

	var err error
	if changed {
		err = b.store.UpdateMetadata(ctx, link.ID, title, logo)
	} else {
		err = b.store.MarkMetadataChecked(ctx, link.ID)
	}
	if err != nil {
		b.logger.Warn("Failed to store backfilled metadata",
			zap.String("id", link.ID),
			zap.Error(err))
		return false
	}
	return changed
}

// mergeField 只替换占位值
func mergeField(current, fetched, sentinel string) string {
	if current == sentinel && fetched != sentinel {
		return fetched
	}
	return current
}
