package utils

import (
	"math"
	"testing"
	"time"
)

func TestWilsonScoreRange(t *testing.T) {
	// 无投票时得分为 0
	if got := WilsonScore(0, 0); got != 0 {
		t.Errorf("WilsonScore(0,0) = %v, want 0", got)
	}

	// 任意输入都应落在 [0, 1)
	cases := [][2]int{{1, 0}, {0, 1}, {10, 0}, {0, 10}, {100, 50}, {1, 1000}, {5000, 1}}
	for _, c := range cases {
		got := WilsonScore(c[0], c[1])
		if got < 0 || got >= 1 {
			t.Errorf("WilsonScore(%d,%d) = %v, out of [0,1)", c[0], c[1], got)
		}
	}
}

func TestWilsonScoreMonotonic(t *testing.T) {
	// 零差评时，赞越多分越高
	prev := 0.0
	for _, up := range []int{1, 5, 10, 50, 100, 1000} {
		got := WilsonScore(up, 0)
		if got <= prev {
			t.Errorf("WilsonScore(%d,0) = %v, 应大于 %v", up, got, prev)
		}
		prev = got
	}

	// 同样的赞，踩多的分更低
	if WilsonScore(10, 5) >= WilsonScore(10, 0) {
		t.Error("加入差评后分数应下降")
	}
}

func TestWilsonScoreKnownValue(t *testing.T) {
	// 手算参照：up=100 down=0, z=1.96 时约 0.9630
	got := WilsonScore(100, 0)
	if math.Abs(got-0.9630) > 0.001 {
		t.Errorf("WilsonScore(100,0) = %v, want ~0.9630", got)
	}
}

func TestControversyScore(t *testing.T) {
	// 低于票数门槛不参与争议排序
	if got := ControversyScore(1, 1, ControversyMinComment); got != 0 {
		t.Errorf("低于门槛应为 0, got %v", got)
	}
	if got := ControversyScore(2, 2, ControversyMinFeed); got != 0 {
		t.Errorf("低于门槛应为 0, got %v", got)
	}

	// 同票数下，五五开的争议分最高
	balanced := ControversyScore(10, 10, ControversyMinFeed)
	skewed := ControversyScore(18, 2, ControversyMinFeed)
	if balanced <= skewed {
		t.Errorf("均衡投票争议分 %v 应高于一边倒 %v", balanced, skewed)
	}

	// 一边倒的内容争议分为 0
	if got := ControversyScore(20, 0, ControversyMinFeed); got != 0 {
		t.Errorf("全是赞没有争议, got %v", got)
	}

	// 总票数越多争议分越高
	if ControversyScore(50, 50, ControversyMinFeed) <= ControversyScore(5, 5, ControversyMinFeed) {
		t.Error("票数规模应放大争议分")
	}
}

func TestMilestoneCrossed(t *testing.T) {
	cases := []struct {
		before, after int
		want          int
		ok            bool
	}{
		{0, 1, 1, true},    // 第一个赞
		{4, 5, 5, true},    // 跨过 5
		{5, 6, 0, false},   // 5 之后一个不跨
		{24, 25, 25, true}, // 跨过 25
		{5, 4, 0, false},   // 取消赞向下不触发
		{4, 4, 0, false},   // 没变化
		{99, 250, 250, true}, // 一次跨多个取最高
		{1000, 1001, 0, false},
	}
	for _, c := range cases {
		got, ok := MilestoneCrossed(c.before, c.after)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("MilestoneCrossed(%d,%d) = (%d,%v), want (%d,%v)",
				c.before, c.after, got, ok, c.want, c.ok)
		}
	}
}

func TestHotScoreDecays(t *testing.T) {
	now := time.Now()
	fresh := HotScore(now, 10, 0, 2, 3)
	stale := HotScore(now.Add(-72*time.Hour), 10, 0, 2, 3)
	if fresh <= stale {
		t.Errorf("同等互动下新内容热度 %v 应高于旧内容 %v", fresh, stale)
	}
}
