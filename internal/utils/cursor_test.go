package utils

import (
	"testing"
	"time"
)

func TestTimeCursorRoundTrip(t *testing.T) {
	now := time.Now()
	cursor := EncodeTimeCursor(now, 42)

	got, id, ok := DecodeTimeCursor(cursor)
	if !ok {
		t.Fatal("合法游标解析失败")
	}
	if id != 42 {
		t.Errorf("id = %d, want 42", id)
	}
	if got.UnixNano() != now.UnixNano() {
		t.Errorf("时间精度丢失: %v != %v", got, now)
	}
}

func TestScoreCursorRoundTrip(t *testing.T) {
	cursor := EncodeScoreCursor(0.96345, 7)

	score, id, ok := DecodeScoreCursor(cursor)
	if !ok {
		t.Fatal("合法游标解析失败")
	}
	if id != 7 || score != 0.96345 {
		t.Errorf("got (%v, %d), want (0.96345, 7)", score, id)
	}
}

func TestDecodeCursorGarbage(t *testing.T) {
	// 非法输入不 panic，只返回 ok=false
	for _, bad := range []string{"", "not-base64!!", "bm9waXBl", "MTIzNDU="} {
		if _, _, ok := DecodeTimeCursor(bad); ok {
			t.Errorf("DecodeTimeCursor(%q) 不应成功", bad)
		}
		if _, _, ok := DecodeScoreCursor(bad); ok {
			t.Errorf("DecodeScoreCursor(%q) 不应成功", bad)
		}
	}
}
