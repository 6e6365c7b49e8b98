package handlers

import (
	"net/http"

	"jishi/internal/services"
	"jishi/internal/utils"

	"github.com/gin-gonic/gin"
)

type ReactionHandler struct{}

func NewReactionHandler() *ReactionHandler {
	return &ReactionHandler{}
}

// Toggle POST /t/:slug/reactions/:type/:id/:kind - 点赞/点踩/收藏的统一切换入口。
// 重复同一反应是取消，up/down 互斥会原子替换，返回最新计数快照。
func (h *ReactionHandler) Toggle(c *gin.Context) {
	user := CurrentUser(c)

	targetID := utils.StringToUint(c.Param("id"))
	if targetID == 0 {
		FailValidation(c, "目标 ID 不合法")
		return
	}

	snap, err := services.Toggle(user, c.Param("type"), targetID, c.Param("kind"))
	if err != nil {
		FailFrom(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
