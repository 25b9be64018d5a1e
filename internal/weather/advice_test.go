package weather

import (
	"testing"

	"github.com/rajasatyajit/bousai/internal/models"
)

func TestAdvise(t *testing.T) {
	tests := []struct {
		name     string
		snap     models.Snapshot
		expected Advice
	}{
		{"Rain", models.Snapshot{Condition: "Rain", Temp: 20}, RainCaution},
		{"Thunderstorm", models.Snapshot{Condition: "Thunderstorm", Temp: 25}, RainCaution},
		{"Rain outranks heat", models.Snapshot{Condition: "Rain", Temp: 35}, RainCaution},
		{"Heat at boundary", models.Snapshot{Condition: "Clear", Temp: 33.0}, HeatWarning},
		{"Just below boundary", models.Snapshot{Condition: "Clear", Temp: 32.9}, AllClear},
		{"Drizzle is not rain", models.Snapshot{Condition: "Drizzle", Temp: 20}, AllClear},
		{"Sentinel", models.UnknownSnapshot(), AllClear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Advise(tt.snap); got != tt.expected {
				t.Errorf("Advise() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLocationReply(t *testing.T) {
	tests := []struct {
		name     string
		snap     models.Snapshot
		expected string
	}{
		{
			name:     "Rain",
			snap:     models.Snapshot{Condition: "Rain", Temp: 21.5, OK: true},
			expected: "現在の気温：21.5℃\n天気：Rain\n☔ 雨が降っています。防災チェックをしておきましょう。",
		},
		{
			name:     "Heat with whole number",
			snap:     models.Snapshot{Condition: "Clear", Temp: 33, OK: true},
			expected: "現在の気温：33℃\n天気：Clear\n🥵 猛暑日です。熱中症に注意！",
		},
		{
			name:     "Sentinel",
			snap:     models.UnknownSnapshot(),
			expected: "⚠️ 現在、天気情報を取得できませんでした。",
		},
		{
			name:     "All clear",
			snap:     models.Snapshot{Condition: "Clouds", Temp: 32.9, OK: true},
			expected: "現在の気温：32.9℃\n天気：Clouds\n🌤 今のところ問題ありません。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocationReply(tt.snap); got != tt.expected {
				t.Errorf("LocationReply() = %q, want %q", got, tt.expected)
			}
		})
	}
}
