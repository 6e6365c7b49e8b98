package utils

import (
	"math"
	"time"
)

// 排序分数的三套算法：
// Wilson 下界用于"最佳"排序，controversy 用于"争议"排序，
// hot 沿用带时间衰减的加权热度，用于首页。

const wilsonZ = 1.96 // 95% 置信区间

// 争议分的最低票数门槛
const (
	ControversyMinComment = 3 // 评论
	ControversyMinFeed    = 5 // 帖子/商品流
)

type HotConfig struct {
	Gravity        float64 // 时间重力
	WeightBookmark float64
	WeightComment  float64
	WeightUpvote   float64
	WeightDownvote float64
	ScaleFactor    float64 // 放大系数
}

var DefaultHotConfig = HotConfig{
	Gravity:        1.5,
	WeightBookmark: 3.0,
	WeightComment:  2.0,
	WeightUpvote:   1.0,
	WeightDownvote: 1.5,
	ScaleFactor:    100.0, // 让分数落在 0-100 区间
}

// WilsonScore 计算好评率的 Wilson 95% 置信下界。
// 票数越多下界越接近真实比例，新内容不会因一票好评就排到最前。
func WilsonScore(up, down int) float64 {
	n := float64(up + down)
	if n == 0 {
		return 0
	}

	z := wilsonZ
	phat := float64(up) / n

	numerator := phat + z*z/(2*n) - z*math.Sqrt((phat*(1-phat)+z*z/(4*n))/n)
	return numerator / (1 + z*z/n)
}

// ControversyScore 票数多且正反接近时分数高；总票数低于门槛返回 0
func ControversyScore(up, down, minVotes int) float64 {
	total := up + down
	if total < minVotes {
		return 0
	}

	balance := 1 - math.Abs(float64(up-down))/float64(total)
	return float64(total) * balance
}

// HotScore 加权互动值取对数平滑后按时间衰减
func HotScore(t time.Time, up, down, bookmark, comment int) float64 {
	hours := time.Since(t).Hours()

	weightedSum := (float64(up) * DefaultHotConfig.WeightUpvote) +
		(float64(comment) * DefaultHotConfig.WeightComment) +
		(float64(bookmark) * DefaultHotConfig.WeightBookmark) -
		(float64(down) * DefaultHotConfig.WeightDownvote)

	if weightedSum < 0 {
		weightedSum = 0 // 防止负数无法取对数
	}

	// log10(sum + 1) -> 确保 sum=0 时结果为 0
	logScore := math.Log10(weightedSum + 1)
	numerator := logScore * DefaultHotConfig.ScaleFactor

	decay := math.Pow(hours+2, DefaultHotConfig.Gravity)

	return numerator / decay
}

// 点赞数里程碑，每次向上跨过触发一次通知
var UpvoteMilestones = []int{1, 5, 10, 25, 50, 100, 250, 500, 1000}

// MilestoneCrossed 返回 before -> after 向上跨过的最高里程碑。
// 4→5 触发 5，5→6 不触发；掉下去再涨回来会再次触发。
func MilestoneCrossed(before, after int) (int, bool) {
	if after <= before {
		return 0, false
	}
	crossed := 0
	for _, m := range UpvoteMilestones {
		if before < m && after >= m {
			crossed = m
		}
	}
	return crossed, crossed != 0
}
