package scheduler

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

func (r SourceReport) status() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "error: " + r.Err.Error()
	default:
		return "ok"
	}
}

const maxCellWidth = 80

var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// tableCell 单行化并截断到 maxCellWidth，其中的 | 需要转义
func tableCell(s string) string {
	s = runewidth.Truncate(cellReplacer.Replace(s), maxCellWidth, "...")
	return strings.ReplaceAll(s, "|", "\\|")
}

// WriteTable 以 markdown 表格输出每个来源的结果，按显示宽度对齐
func (r CycleReport) WriteTable(w io.Writer) error {
	rows := [][]string{{"source", "kind", "fetched", "saved", "skipped", "failed", "status"}}
	for _, s := range r.Sources {
		rows = append(rows, []string{
			tableCell(s.Source),
			string(s.Kind),
			fmt.Sprint(s.Fetched),
			fmt.Sprint(s.Result.Saved),
			fmt.Sprint(s.Result.Skipped),
			fmt.Sprint(s.Result.Failed),
			tableCell(s.status()),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	for i, row := range rows {
		writeRow(&sb, row, widths)
		if i == 0 {
			sep := make([]string, len(widths))
			for j, n := range widths {
				sep[j] = strings.Repeat("-", n)
			}
			writeRow(&sb, sep, widths)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeRow(sb *strings.Builder, row []string, widths []int) {
	sb.WriteString("|")
	for i, cell := range row {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}
