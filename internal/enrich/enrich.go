package enrich

import (
	"strings"
	"unicode"

	"github.com/LJTian/NewsHub/internal/model"
)

// Enricher 从标题+摘要推断语言、地区、分类；关键词实现只是占位，可替换为真正的分类器
type Enricher interface {
	Language(title, summary string) string
	Region(title, summary string) *string
	Category(title, summary string) *string
}

// Keywords 基于固定关键词表的实现，结果完全确定
type Keywords struct{}

var _ Enricher = Keywords{}

var swahiliMarkers = []string{
	"habari", "serikali", "rais", "wabunge", "mkuu", "mkoa", "wilaya",
	"shule", "hospitali", "polisi", "uchumi", "biashara", "kisiasa",
}

type regionKeyword struct {
	keyword string
	region  string
}

// 顺序即优先级
var regionKeywords = []regionKeyword{
	{"nairobi", "nairobi"},
	{"mombasa", "mombasa"},
	{"kisumu", "kisumu"},
	{"nakuru", "nakuru"},
	{"eldoret", "eldoret"},
	{"thika", "kiambu"},
	{"malindi", "kilifi"},
	{"garissa", "garissa"},
	{"kakamega", "kakamega"},
	{"kitale", "trans-nzoia"},
}

type categoryGroup struct {
	name     string
	keywords []string
}

var categoryGroups = []categoryGroup{
	{"politics", []string{"politics", "political", "parliament", "election", "government", "president"}},
	{"business", []string{"business", "economy", "economic", "trade", "market", "finance"}},
	{"sports", []string{"sports", "football", "rugby", "athletics", "olympics"}},
	{"health", []string{"health", "medical", "hospital", "doctor", "disease", "covid"}},
	{"technology", []string{"technology", "tech", "digital", "innovation", "startup"}},
	{"education", []string{"education", "school", "university", "student", "teacher"}},
	{"entertainment", []string{"entertainment", "music", "film", "celebrity", "arts"}},
}

func haystack(title, summary string) string {
	return strings.ToLower(title + " " + summary)
}

// Language 命中超过 2 个斯瓦希里语标记词返回 "sw"，否则 "en"
func (Keywords) Language(title, summary string) string {
	return DetectLanguage(title, summary)
}

func (Keywords) Region(title, summary string) *string {
	return DetectRegion(title, summary)
}

func (Keywords) Category(title, summary string) *string {
	return Categorize(title, summary)
}

func DetectLanguage(title, summary string) string {
	text := haystack(title, summary)
	count := 0
	for _, w := range swahiliMarkers {
		if strings.Contains(text, w) {
			count++
		}
	}
	if count > 2 {
		return "sw"
	}
	return "en"
}

// DetectRegion 按列表顺序取第一个命中的地名，与其在文本中的位置无关
func DetectRegion(title, summary string) *string {
	text := haystack(title, summary)
	for _, rk := range regionKeywords {
		if strings.Contains(text, rk.keyword) {
			region := rk.region
			return &region
		}
	}
	return nil
}

func Categorize(title, summary string) *string {
	text := haystack(title, summary)
	for _, g := range categoryGroups {
		for _, kw := range g.keywords {
			if strings.Contains(text, kw) {
				name := g.name
				return &name
			}
		}
	}
	return nil
}

// StripMarkup 去掉 < > 与控制字符并裁剪空白；不是 HTML 解析器，实体与属性原样保留
func StripMarkup(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '<' || r == '>' || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Apply 用 title + summary 填充候选文章的 language/region/category
func Apply(e Enricher, c *model.Candidate) {
	summary := c.SummaryText()
	c.Language = e.Language(c.Title, summary)
	c.Region = e.Region(c.Title, summary)
	c.Category = e.Category(c.Title, summary)
}
