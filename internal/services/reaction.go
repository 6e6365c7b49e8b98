package services

import (
	"errors"
	"fmt"

	"jishi/internal/db"
	"jishi/internal/models"
	"jishi/internal/utils"

	"gorm.io/gorm"
)

// 反应切换：每个 (user, target) 有一个 up/down 互斥槽位和一个独立的 bookmark 槽位。
// 重复同一反应是取消；换另一个互斥反应是原子替换（同一事务内删旧插新、计数 ±1）。

var (
	ErrBadTarget  = errors.New("unknown reaction target")
	ErrBadKind    = errors.New("unknown reaction kind")
	ErrTargetGone = errors.New("target not found or removed")
	ErrNoBookmark = errors.New("bookmark not supported for this target")
)

// CounterDeltas 冗余计数的变化量
type CounterDeltas struct {
	Up       int
	Down     int
	Bookmark int
}

// ToggleOutcome 纯转移结果
type ToggleOutcome struct {
	Added       bool     // 请求的 kind 最终是否处于激活态
	RemoveKinds []string // 需要删除的已有反应
	Deltas      CounterDeltas
}

// ResolveToggle 纯函数：根据当前激活槽位和请求的 kind 计算转移。
// active 是 kind -> 是否激活 的快照。
func ResolveToggle(active map[string]bool, kind string) ToggleOutcome {
	outcome := ToggleOutcome{}

	if active[kind] {
		// 同一反应再点一次 = 取消
		outcome.RemoveKinds = []string{kind}
		applyDelta(&outcome.Deltas, kind, -1)
		return outcome
	}

	outcome.Added = true
	if kind == models.ReactionUp && active[models.ReactionDown] {
		outcome.RemoveKinds = []string{models.ReactionDown}
		applyDelta(&outcome.Deltas, models.ReactionDown, -1)
	}
	if kind == models.ReactionDown && active[models.ReactionUp] {
		outcome.RemoveKinds = []string{models.ReactionUp}
		applyDelta(&outcome.Deltas, models.ReactionUp, -1)
	}
	applyDelta(&outcome.Deltas, kind, 1)
	return outcome
}

func applyDelta(d *CounterDeltas, kind string, delta int) {
	switch kind {
	case models.ReactionUp:
		d.Up += delta
	case models.ReactionDown:
		d.Down += delta
	case models.ReactionBookmark:
		d.Bookmark += delta
	}
}

// ReactionSnapshot 切换后的计数快照，直接回给前端
type ReactionSnapshot struct {
	UpvoteCount   int             `json:"upvote_count"`
	DownvoteCount int             `json:"downvote_count"`
	BookmarkCount int             `json:"bookmark_count"`
	Active        map[string]bool `json:"active"`
}

// reactionTarget 三类目标的公共视图
type reactionTarget struct {
	table       string
	authorID    uint
	tenantID    uint
	upvotes     int
	hasBookmark bool
}

func loadTarget(targetType string, targetID uint) (*reactionTarget, error) {
	switch targetType {
	case models.TargetThread:
		var thread models.Thread
		if err := db.DB.First(&thread, targetID).Error; err != nil || thread.IsRemoved {
			return nil, ErrTargetGone
		}
		return &reactionTarget{table: "threads", authorID: thread.UserID, tenantID: thread.TenantID,
			upvotes: thread.UpvoteCount, hasBookmark: true}, nil
	case models.TargetComment:
		var comment models.Comment
		if err := db.DB.First(&comment, targetID).Error; err != nil || comment.IsDeleted {
			return nil, ErrTargetGone
		}
		return &reactionTarget{table: "comments", authorID: comment.UserID, tenantID: comment.TenantID,
			upvotes: comment.UpvoteCount}, nil
	case models.TargetListing:
		var listing models.Listing
		if err := db.DB.First(&listing, targetID).Error; err != nil || listing.IsRemoved {
			return nil, ErrTargetGone
		}
		return &reactionTarget{table: "listings", authorID: listing.UserID, tenantID: listing.TenantID,
			upvotes: listing.UpvoteCount, hasBookmark: true}, nil
	}
	return nil, ErrBadTarget
}

// Toggle 执行一次反应切换
func Toggle(user *models.User, targetType string, targetID uint, kind string) (*ReactionSnapshot, error) {
	if kind != models.ReactionUp && kind != models.ReactionDown && kind != models.ReactionBookmark {
		return nil, ErrBadKind
	}

	target, err := loadTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}
	if kind == models.ReactionBookmark && !target.hasBookmark {
		return nil, ErrNoBookmark
	}

	if err := GateContentWrite(target.tenantID, user.ID); err != nil {
		return nil, err
	}

	var outcome ToggleOutcome
	upvotesAfter := target.upvotes
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// 当前激活槽位
		var existing []models.Reaction
		if err := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", user.ID, targetType, targetID).
			Find(&existing).Error; err != nil {
			return err
		}
		active := make(map[string]bool, len(existing))
		for _, r := range existing {
			active[r.Kind] = true
		}

		outcome = ResolveToggle(active, kind)

		for _, k := range outcome.RemoveKinds {
			if err := tx.Where("user_id = ? AND target_type = ? AND target_id = ? AND kind = ?",
				user.ID, targetType, targetID, k).Delete(&models.Reaction{}).Error; err != nil {
				return err
			}
		}
		if outcome.Added {
			reaction := models.Reaction{
				UserID:     user.ID,
				TargetType: targetType,
				TargetID:   targetID,
				Kind:       kind,
			}
			if err := tx.Create(&reaction).Error; err != nil {
				return err
			}
		}

		// 冗余计数按 ±1 调整
		updates := map[string]interface{}{}
		if outcome.Deltas.Up != 0 {
			updates["upvote_count"] = gorm.Expr("upvote_count + ?", outcome.Deltas.Up)
		}
		if outcome.Deltas.Down != 0 {
			updates["downvote_count"] = gorm.Expr("downvote_count + ?", outcome.Deltas.Down)
		}
		if outcome.Deltas.Bookmark != 0 {
			updates["bookmark_count"] = gorm.Expr("bookmark_count + ?", outcome.Deltas.Bookmark)
		}
		if len(updates) > 0 {
			if err := tx.Table(target.table).Where("id = ?", targetID).Updates(updates).Error; err != nil {
				return err
			}
		}

		// 里程碑判定用事务内读回的计数，并发点赞时每次跨过才恰好触发一次
		if outcome.Deltas.Up != 0 {
			var row struct{ UpvoteCount int }
			if err := tx.Table(target.table).Select("upvote_count").
				Where("id = ?", targetID).Scan(&row).Error; err != nil {
				return err
			}
			upvotesAfter = row.UpvoteCount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 跨过点赞里程碑时通知作者
	if milestone, ok := utils.MilestoneCrossed(upvotesAfter-outcome.Deltas.Up, upvotesAfter); ok {
		NotifyAsync(target.authorID, &user.ID, models.NotificationTypeMilestone, targetType, targetID,
			fmt.Sprintf("您的内容获得了 %d 个赞", milestone))
	}

	// 异步调整作者信誉，取消反应时反向冲账
	if target.authorID != user.ID {
		applyReputation(targetType, target.authorID, user.ID, outcome.Deltas)
	}

	// 异步重算排序分数
	switch targetType {
	case models.TargetThread:
		GetRankingService().ScheduleUpdate(models.TargetThread, targetID)
	case models.TargetListing:
		GetRankingService().ScheduleUpdate(models.TargetListing, targetID)
	case models.TargetComment:
		GetRankingService().ScheduleUpdate(models.TargetComment, targetID)
	}

	return snapshot(user.ID, targetType, targetID, target.table)
}

func applyReputation(targetType string, authorID, actorID uint, d CounterDeltas) {
	likeAction, likeRep := ActionThreadLiked, RepThreadLiked
	downAction, downRep := ActionThreadDownvoted, RepThreadDownvoted
	switch targetType {
	case models.TargetComment:
		likeAction, likeRep = ActionCommentLiked, RepCommentLiked
		downAction, downRep = ActionCommentDownvoted, RepCommentDownvoted
	case models.TargetListing:
		likeAction, likeRep = ActionListingLiked, RepListingLiked
		downAction, downRep = ActionThreadDownvoted, RepThreadDownvoted
	}

	if d.Up != 0 {
		AddReputationAsync(authorID, likeRep*d.Up, likeAction)
	}
	if d.Down != 0 {
		AddReputationAsync(authorID, downRep*d.Down, downAction)
		// 点踩者自己也扣分，取消点踩时返还
		AddReputationAsync(actorID, RepDownvoteOther*d.Down, ActionDownvoteOther)
	}
}

func snapshot(userID uint, targetType string, targetID uint, table string) (*ReactionSnapshot, error) {
	snap := &ReactionSnapshot{Active: map[string]bool{}}

	row := struct {
		UpvoteCount   int
		DownvoteCount int
		BookmarkCount int
	}{}
	// 评论没有 bookmark_count 列
	columns := []string{"upvote_count", "downvote_count", "bookmark_count"}
	if table == "comments" {
		columns = columns[:2]
	}
	if err := db.DB.Table(table).Select(columns).
		Where("id = ?", targetID).Scan(&row).Error; err != nil {
		return nil, err
	}
	snap.UpvoteCount = row.UpvoteCount
	snap.DownvoteCount = row.DownvoteCount
	snap.BookmarkCount = row.BookmarkCount

	var mine []models.Reaction
	db.DB.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).Find(&mine)
	for _, r := range mine {
		snap.Active[r.Kind] = true
	}
	return snap, nil
}
