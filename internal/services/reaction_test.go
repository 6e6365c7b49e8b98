package services

import (
	"testing"

	"jishi/internal/models"
	"jishi/internal/utils"
)

func TestResolveToggleFirstReaction(t *testing.T) {
	// 空槽位上点赞：新增一条，up +1
	out := ResolveToggle(map[string]bool{}, models.ReactionUp)
	if !out.Added {
		t.Error("首次点赞应新增反应")
	}
	if len(out.RemoveKinds) != 0 {
		t.Errorf("不应删除任何反应, got %v", out.RemoveKinds)
	}
	if out.Deltas != (CounterDeltas{Up: 1}) {
		t.Errorf("deltas = %+v, want Up:1", out.Deltas)
	}
}

func TestResolveToggleRepeatCancels(t *testing.T) {
	// 同一反应再点一次 = 取消
	out := ResolveToggle(map[string]bool{models.ReactionUp: true}, models.ReactionUp)
	if out.Added {
		t.Error("重复点赞应取消而不是新增")
	}
	if len(out.RemoveKinds) != 1 || out.RemoveKinds[0] != models.ReactionUp {
		t.Errorf("应删除 up, got %v", out.RemoveKinds)
	}
	if out.Deltas != (CounterDeltas{Up: -1}) {
		t.Errorf("deltas = %+v, want Up:-1", out.Deltas)
	}
}

func TestResolveToggleExclusiveReplace(t *testing.T) {
	// 已点赞状态下点踩：原子替换，up -1 down +1
	out := ResolveToggle(map[string]bool{models.ReactionUp: true}, models.ReactionDown)
	if !out.Added {
		t.Error("点踩应新增反应")
	}
	if len(out.RemoveKinds) != 1 || out.RemoveKinds[0] != models.ReactionUp {
		t.Errorf("应删除 up, got %v", out.RemoveKinds)
	}
	if out.Deltas != (CounterDeltas{Up: -1, Down: 1}) {
		t.Errorf("deltas = %+v, want Up:-1 Down:1", out.Deltas)
	}

	// 反方向同理
	out = ResolveToggle(map[string]bool{models.ReactionDown: true}, models.ReactionUp)
	if out.Deltas != (CounterDeltas{Up: 1, Down: -1}) {
		t.Errorf("deltas = %+v, want Up:1 Down:-1", out.Deltas)
	}
}

func TestResolveToggleBookmarkIndependent(t *testing.T) {
	// 收藏不影响 up/down 槽位
	out := ResolveToggle(map[string]bool{models.ReactionUp: true}, models.ReactionBookmark)
	if !out.Added {
		t.Error("收藏应新增")
	}
	if len(out.RemoveKinds) != 0 {
		t.Errorf("收藏不应动 up/down, got %v", out.RemoveKinds)
	}
	if out.Deltas != (CounterDeltas{Bookmark: 1}) {
		t.Errorf("deltas = %+v, want Bookmark:1", out.Deltas)
	}

	// 点赞也不影响已有收藏
	out = ResolveToggle(map[string]bool{models.ReactionBookmark: true}, models.ReactionUp)
	if len(out.RemoveKinds) != 0 || out.Deltas != (CounterDeltas{Up: 1}) {
		t.Errorf("收藏状态下点赞异常: %+v", out)
	}
}

func TestMilestoneFromCommittedCount(t *testing.T) {
	// 两个用户并发点赞同一帖子，事务先后提交，事务内读回的计数分别是 5 和 6。
	// 里程碑从 (读回值-增量, 读回值) 推导，只有第一次提交跨过 5，不会双发也不会漏发。
	commits := []struct {
		delta      int
		afterCount int // 事务内读回的 upvote_count
	}{
		{1, 5},
		{1, 6},
	}

	var fired []int
	for _, commit := range commits {
		if m, ok := utils.MilestoneCrossed(commit.afterCount-commit.delta, commit.afterCount); ok {
			fired = append(fired, m)
		}
	}
	if len(fired) != 1 || fired[0] != 5 {
		t.Errorf("并发跨过里程碑 5 应恰好触发一次, got %v", fired)
	}

	// 取消点赞（delta 为负）不触发
	if _, ok := utils.MilestoneCrossed(5-(-1), 5); ok {
		t.Error("取消点赞不应触发里程碑")
	}
}

func TestResolveTogglePairIsIdentity(t *testing.T) {
	// 任意状态下同一反应点两次，计数净变化为 0
	for _, kind := range []string{models.ReactionUp, models.ReactionDown, models.ReactionBookmark} {
		active := map[string]bool{}
		first := ResolveToggle(active, kind)
		if first.Added {
			active[kind] = true
		}
		second := ResolveToggle(active, kind)

		net := CounterDeltas{
			Up:       first.Deltas.Up + second.Deltas.Up,
			Down:     first.Deltas.Down + second.Deltas.Down,
			Bookmark: first.Deltas.Bookmark + second.Deltas.Bookmark,
		}
		if net != (CounterDeltas{}) {
			t.Errorf("%s 点两次净变化应为 0, got %+v", kind, net)
		}
	}
}
