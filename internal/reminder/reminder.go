// Package reminder produces the month-end preparedness checklist
package reminder

import (
	"strings"
	"time"
)

var checklistLines = []string{
	"🧯 **防災チェック（月末）**",
	"・非常食・水の賞味期限チェック",
	"・モバイルバッテリー充電",
	"・懐中電灯の電池確認",
	"・救急セットの補充",
	"・避難経路の確認",
	"・非常持ち出し袋の見直し",
}

// LastDayOfMonth returns the last day of t's month in t's location
func LastDayOfMonth(t time.Time) time.Time {
	// The 28th plus four days always lands in the following month.
	next := time.Date(t.Year(), t.Month(), 28, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 4)
	first := time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 0, -1)
}

// IsLastDay reports whether t falls on the last day of its month
func IsLastDay(t time.Time) bool {
	return t.Day() == LastDayOfMonth(t).Day()
}

// Checklist returns the checklist on the last day of the month and "" otherwise
func Checklist(t time.Time) string {
	if !IsLastDay(t) {
		return ""
	}
	return strings.Join(checklistLines, "\n")
}
