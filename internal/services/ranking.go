package services

import (
	"log"
	"sync"
	"time"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/utils"
)

// RankingService 提供异步重算内容排序分数的服务。
// 反应/评论发生后把目标排队，后台批量把 wilson/controversy/hot 写回冗余列。

type rankTarget struct {
	Type string
	ID   uint
}

type RankingService struct {
	queue   chan rankTarget // 待更新的目标队列
	pending map[rankTarget]bool
	mu      sync.Mutex
}

var (
	rankingService *RankingService
	once           sync.Once
)

// GetRankingService 获取单例排名服务
func GetRankingService() *RankingService {
	once.Do(func() {
		rankingService = &RankingService{
			queue:   make(chan rankTarget, 1000), // 缓冲队列，防止阻塞
			pending: make(map[rankTarget]bool),
		}
		// 启动后台 worker
		go rankingService.worker()
	})
	return rankingService
}

// ScheduleUpdate 将目标加入更新队列（异步）
// 使用去重机制避免短时间内重复计算同一目标
func (s *RankingService) ScheduleUpdate(targetType string, id uint) {
	target := rankTarget{Type: targetType, ID: id}

	s.mu.Lock()
	if s.pending[target] {
		// 已在队列中，跳过
		s.mu.Unlock()
		return
	}
	s.pending[target] = true
	s.mu.Unlock()

	// 非阻塞发送到队列
	select {
	case s.queue <- target:
		// 成功加入队列
	default:
		// 队列满了，移除 pending 标记
		s.mu.Lock()
		delete(s.pending, target)
		s.mu.Unlock()
		log.Printf("排名更新队列已满，跳过 %s %d", targetType, id)
	}
}

// worker 后台处理队列中的更新请求
func (s *RankingService) worker() {
	// 批量处理：收集一批请求后统一处理
	batch := make([]rankTarget, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond) // 每 500ms 处理一批
	defer ticker.Stop()

	for {
		select {
		case target := <-s.queue:
			batch = append(batch, target)
			// 如果达到批量大小，立即处理
			if len(batch) >= 50 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			// 定时处理剩余的
			if len(batch) > 0 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *RankingService) processBatch(targets []rankTarget) {
	for _, target := range targets {
		s.updateScores(target)

		// 清除 pending 状态
		s.mu.Lock()
		delete(s.pending, target)
		s.mu.Unlock()
	}
}

// updateScores 按目标类型重算并写回分数
func (s *RankingService) updateScores(target rankTarget) {
	switch target.Type {
	case models.TargetThread:
		var thread models.Thread
		if err := db.DB.First(&thread, target.ID).Error; err != nil {
			log.Printf("更新分数失败：帖子 %d 不存在", target.ID)
			return
		}
		updates := map[string]interface{}{
			"wilson_score":      utils.WilsonScore(thread.UpvoteCount, thread.DownvoteCount),
			"controversy_score": utils.ControversyScore(thread.UpvoteCount, thread.DownvoteCount, utils.ControversyMinFeed),
			"hot_score":         utils.HotScore(thread.CreatedAt, thread.UpvoteCount, thread.DownvoteCount, thread.BookmarkCount, thread.CommentCount),
		}
		if err := db.DB.Model(&thread).UpdateColumns(updates).Error; err != nil {
			log.Printf("更新帖子 %d 分数失败: %v", target.ID, err)
		}

	case models.TargetListing:
		var listing models.Listing
		if err := db.DB.First(&listing, target.ID).Error; err != nil {
			log.Printf("更新分数失败：商品 %d 不存在", target.ID)
			return
		}
		updates := map[string]interface{}{
			"wilson_score": utils.WilsonScore(listing.UpvoteCount, listing.DownvoteCount),
			"hot_score":    utils.HotScore(listing.CreatedAt, listing.UpvoteCount, listing.DownvoteCount, listing.BookmarkCount, listing.CommentCount),
		}
		if err := db.DB.Model(&listing).UpdateColumns(updates).Error; err != nil {
			log.Printf("更新商品 %d 分数失败: %v", target.ID, err)
		}

	case models.TargetComment:
		var comment models.Comment
		if err := db.DB.First(&comment, target.ID).Error; err != nil {
			log.Printf("更新分数失败：评论 %d 不存在", target.ID)
			return
		}
		score := utils.WilsonScore(comment.UpvoteCount, comment.DownvoteCount)
		if err := db.DB.Model(&comment).UpdateColumn("wilson_score", score).Error; err != nil {
			log.Printf("更新评论 %d 分数失败: %v", target.ID, err)
		}
	}
}

// UpdateScoresSync 同步重算（需要立即生效的场景）
func UpdateScoresSync(targetType string, id uint) {
	GetRankingService().updateScores(rankTarget{Type: targetType, ID: id})
}

// StartScheduledRefresh 启动定时刷新任务（每天凌晨 3 点执行）
// hot 分数随时间衰减，没有新互动的内容也要定期重算
func (s *RankingService) StartScheduledRefresh() {
	go func() {
		for {
			// 计算到下一个凌晨 3 点的时间
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
			if now.After(next) {
				next = next.Add(24 * time.Hour)
			}
			time.Sleep(time.Until(next))

			log.Println("开始定时刷新排序分数...")
			s.refreshRecent()
			log.Println("定时刷新排序分数完成")
		}
	}()
}

// refreshRecent 刷新最近 7 天和 hot 分数最高的 30 条内容（边遍历边去重）
func (s *RankingService) refreshRecent() {
	count := 0
	sevenDaysAgo := time.Now().AddDate(0, 0, -7)

	for _, targetType := range []string{models.TargetThread, models.TargetListing} {
		table := "threads"
		if targetType == models.TargetListing {
			table = "listings"
		}

		processed := make(map[uint]bool)

		var recentIDs []uint
		db.DB.Table(table).Where("created_at >= ?", sevenDaysAgo).Pluck("id", &recentIDs)
		for _, id := range recentIDs {
			s.updateScores(rankTarget{Type: targetType, ID: id})
			processed[id] = true
			count++
		}

		var topIDs []uint
		db.DB.Table(table).Order("hot_score DESC").Limit(30).Pluck("id", &topIDs)
		for _, id := range topIDs {
			if !processed[id] {
				s.updateScores(rankTarget{Type: targetType, ID: id})
				count++
			}
		}
	}

	log.Printf("本次刷新 %d 条内容分数", count)
}
