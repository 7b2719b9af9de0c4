package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"
)

// 校验 date_format 时用的参考时间，各字段取两位数以覆盖补零与不补零两种写法
var dateFormatSample = time.Date(2023, time.October, 17, 14, 35, 42, 123000000, time.UTC)

// stripPadFlags 去掉 %-d、%_H、%0e、%^a 之类的填充标记，解析时数字本就接受不补零
func stripPadFlags(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		b.WriteByte(format[i])
		if format[i] != '%' || i+1 >= len(format) {
			continue
		}
		if format[i+1] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		for i+1 < len(format) && strings.IndexByte("-_0^#", format[i+1]) >= 0 {
			i++
		}
	}
	return b.String()
}

// ParseDate 按 date_format 解析日期文本。含 % 的按 strftime 处理，否则视为 Go layout
func ParseDate(value, format string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if !strings.Contains(format, "%") {
		t, err := time.Parse(format, value)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	t, err := timefmt.Parse(value, stripPadFlags(format))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// CheckDateFormat 用参考时间格式化再解析回来，失败说明格式本身不可用
func CheckDateFormat(format string) error {
	if strings.TrimSpace(format) == "" {
		return fmt.Errorf("date format is empty")
	}
	var sample string
	if strings.Contains(format, "%") {
		sample = timefmt.Format(dateFormatSample, format)
	} else {
		sample = dateFormatSample.Format(format)
		if sample == format {
			return fmt.Errorf("date format %q contains no date fields", format)
		}
	}
	if _, err := ParseDate(sample, format); err != nil {
		return fmt.Errorf("date format %q: %w", format, err)
	}
	return nil
}
