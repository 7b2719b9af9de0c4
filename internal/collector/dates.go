package collector

import (
	"fmt"
	"strings"
	"time"
)

// feed 日期按顺序尝试的格式，最后再退回 RFC3339
var feedDateLayouts = []string{
	time.RFC1123Z,                   // Mon, 02 Jan 2006 15:04:05 -0700
	"Mon, 02 Jan 2006 15:04:05 GMT", // 固定 GMT 后缀
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseFeedDate 日期字段存在但无法解析时返回错误，由调用方跳过该条目
func parseFeedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", ErrParse, s)
}
