package utils

import (
	"testing"
	"time"
)

func TestCacheTTLExpiry(t *testing.T) {
	c := GetCache()
	c.Set("ttl-key", "value", 20*time.Millisecond)

	if got := c.Get("ttl-key"); got != "value" {
		t.Errorf("未过期应命中, got %v", got)
	}

	time.Sleep(30 * time.Millisecond)
	if got := c.Get("ttl-key"); got != nil {
		t.Errorf("过期后应返回 nil, got %v", got)
	}
}

func TestCacheDelete(t *testing.T) {
	c := GetCache()
	c.Set("del-key", 42, time.Minute)
	c.Delete("del-key")

	if got := c.Get("del-key"); got != nil {
		t.Errorf("删除后应返回 nil, got %v", got)
	}
}

func TestCacheMiss(t *testing.T) {
	if got := GetCache().Get("no-such-key"); got != nil {
		t.Errorf("未写入的键应返回 nil, got %v", got)
	}
}
