package services

import (
	"jishi/internal/db"
	"jishi/internal/models"

	"gorm.io/gorm"
)

// 信誉动作常量
const (
	ActionThreadLiked      = "帖子获赞"
	ActionThreadDownvoted  = "帖子被踩"
	ActionListingLiked     = "商品获赞"
	ActionListingSold      = "商品售出"
	ActionCommentLiked     = "评论获赞"
	ActionCommentDownvoted = "评论被踩"
	ActionContentRemoved   = "内容被管理下架"
	ActionDownvoteOther    = "踩了别人"
)

// 信誉值常量
const (
	RepThreadLiked      = 1
	RepThreadDownvoted  = -3
	RepListingLiked     = 1
	RepListingSold      = 5
	RepCommentLiked     = 1
	RepCommentDownvoted = -3
	RepContentRemoved   = -10
	RepDownvoteOther    = -1
)

// AddReputation 使用事务变更信誉并记录明细
// 传入用户ID、变动值（正数增加，负数扣除）、动作描述
func AddReputation(userID uint, amount int, action string) error {
	return db.DB.Transaction(func(tx *gorm.DB) error {
		// 1. 创建信誉明细记录
		entry := models.ReputationLog{
			UserID: userID,
			Amount: amount,
			Action: action,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		// 2. 更新用户信誉余额
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("reputation", gorm.Expr("reputation + ?", amount)).
			Error; err != nil {
			return err
		}

		return nil
	})
}

// AddReputationAsync 异步变更信誉（在热路径上调用）
func AddReputationAsync(userID uint, amount int, action string) {
	go func() {
		_ = AddReputation(userID, amount, action)
	}()
}
