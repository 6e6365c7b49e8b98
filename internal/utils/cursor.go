package utils

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 信息流游标：base64("<排序键>|<id>")，对客户端不透明。
// 时间序用 UnixNano，分数序用分数本身；id 用于同值时的稳定分界。

// EncodeTimeCursor 时间序游标
func EncodeTimeCursor(t time.Time, id uint) string {
	raw := fmt.Sprintf("%d|%d", t.UnixNano(), id)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeTimeCursor 解析时间序游标，非法输入返回 ok=false
func DecodeTimeCursor(cursor string) (t time.Time, id uint, ok bool) {
	nanos, id, ok := decodeParts(cursor)
	if !ok {
		return time.Time{}, 0, false
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return time.Time{}, 0, false
	}
	return time.Unix(0, n), id, true
}

// EncodeScoreCursor 分数序游标
func EncodeScoreCursor(score float64, id uint) string {
	raw := fmt.Sprintf("%g|%d", score, id)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeScoreCursor 解析分数序游标
func DecodeScoreCursor(cursor string) (score float64, id uint, ok bool) {
	s, id, ok := decodeParts(cursor)
	if !ok {
		return 0, 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, 0, false
	}
	return f, id, true
}

func decodeParts(cursor string) (key string, id uint, ok bool) {
	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", 0, false
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	rawID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return parts[0], uint(rawID), true
}
