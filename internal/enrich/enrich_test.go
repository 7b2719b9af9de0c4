package enrich

import (
	"testing"

	"github.com/LJTian/NewsHub/internal/model"
)

func TestDetectLanguageThreshold(t *testing.T) {
	cases := []struct {
		title, summary string
		want           string
	}{
		{"", "", "en"},
		{"Habari za serikali", "", "en"},                        // 2 个标记词
		{"Habari za serikali", "Rais amezungumza leo", "sw"},    // 3 个
		{"HABARI SERIKALI RAIS POLISI", "", "sw"},               // 大小写不敏感
		{"Parliament passes new budget", "Economy grows", "en"}, // 英文
	}
	for _, c := range cases {
		got := DetectLanguage(c.title, c.summary)
		if got != c.want {
			t.Fatalf("DetectLanguage(%q, %q) = %q, want %q", c.title, c.summary, got, c.want)
		}
		if got != "sw" && got != "en" {
			t.Fatalf("DetectLanguage returned unexpected tag %q", got)
		}
	}
}

func TestDetectLanguageCountsDistinctMarkers(t *testing.T) {
	// 同一个词重复出现只算一次
	if got := DetectLanguage("habari habari habari habari", ""); got != "en" {
		t.Fatalf("repeated marker should count once, got %q", got)
	}
}

func TestDetectRegionListOrderWins(t *testing.T) {
	// thika 在文本中先出现，但 nairobi 在列表中更靠前
	got := DetectRegion("Thika road traffic spills into Nairobi", "")
	if got == nil || *got != "nairobi" {
		t.Fatalf("DetectRegion = %v, want nairobi", got)
	}

	got = DetectRegion("Flooding in Thika", "")
	if got == nil || *got != "kiambu" {
		t.Fatalf("DetectRegion(thika) = %v, want kiambu", got)
	}

	got = DetectRegion("Kitale farmers", "maize prices")
	if got == nil || *got != "trans-nzoia" {
		t.Fatalf("DetectRegion(kitale) = %v, want trans-nzoia", got)
	}

	if got := DetectRegion("Weather update", "sunny skies"); got != nil {
		t.Fatalf("DetectRegion without place names = %q, want nil", *got)
	}
}

func TestCategorizePriorityOrder(t *testing.T) {
	// sports 与 politics 同时命中时取 politics
	got := Categorize("Football federation elections", "government steps in")
	if got == nil || *got != "politics" {
		t.Fatalf("Categorize = %v, want politics", got)
	}

	got = Categorize("Harambee Stars win football match", "")
	if got == nil || *got != "sports" {
		t.Fatalf("Categorize = %v, want sports", got)
	}

	got = Categorize("New hospital opens", "")
	if got == nil || *got != "health" {
		t.Fatalf("Categorize = %v, want health", got)
	}

	if got := Categorize("Weather update", ""); got != nil {
		t.Fatalf("Categorize = %q, want nil", *got)
	}
}

func TestStripMarkup(t *testing.T) {
	cases := map[string]string{
		"  <p>Hello</p>  ":         "pHello/p",
		"line1\nline2\ttab":        "line1line2tab",
		"plain text":               "plain text",
		"a &amp; b":                "a &amp; b",
		"\x00\x07<b>bold</b>\x1f ": "bbold/b",
	}
	for in, want := range cases {
		if got := StripMarkup(in); got != want {
			t.Fatalf("StripMarkup(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	summary := "Serikali na wabunge wakutana Nairobi kuhusu uchumi"
	a := &model.Candidate{Title: "Habari", Summary: &summary}
	b := &model.Candidate{Title: "Habari", Summary: &summary}

	Apply(Keywords{}, a)
	Apply(Keywords{}, b)

	if a.Language != "sw" || a.Language != b.Language {
		t.Fatalf("Language = %q / %q, want sw", a.Language, b.Language)
	}
	if a.Region == nil || *a.Region != "nairobi" {
		t.Fatalf("Region = %v, want nairobi", a.Region)
	}
	if a.Category != nil || b.Category != nil {
		t.Fatalf("Category should be nil for swahili-only keywords")
	}
}
