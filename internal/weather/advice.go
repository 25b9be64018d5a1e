package weather

import (
	"fmt"
	"strconv"

	"github.com/rajasatyajit/bousai/internal/models"
)

// HeatThreshold is the temperature (°C) at which the heat warning applies, inclusive
const HeatThreshold = 33.0

// Advice is the classification of a snapshot sent back to a user
type Advice int

const (
	AllClear Advice = iota
	RainCaution
	HeatWarning
)

// Advise classifies a snapshot. Rain outranks heat.
func Advise(s models.Snapshot) Advice {
	switch {
	case s.Condition == "Rain" || s.Condition == "Thunderstorm":
		return RainCaution
	case s.Temp >= HeatThreshold:
		return HeatWarning
	default:
		return AllClear
	}
}

func (a Advice) String() string {
	switch a {
	case RainCaution:
		return "rain"
	case HeatWarning:
		return "heat"
	default:
		return "clear"
	}
}

// Message is the user-facing advice line
func (a Advice) Message() string {
	switch a {
	case RainCaution:
		return "☔ 雨が降っています。防災チェックをしておきましょう。"
	case HeatWarning:
		return "🥵 猛暑日です。熱中症に注意！"
	default:
		return "🌤 今のところ問題ありません。"
	}
}

// UnavailableReply replaces the location reply when no snapshot could be fetched
const UnavailableReply = "⚠️ 現在、天気情報を取得できませんでした。"

// LocationReply renders the reply to a shared location
func LocationReply(s models.Snapshot) string {
	if !s.OK {
		return UnavailableReply
	}
	return fmt.Sprintf("現在の気温：%s℃\n天気：%s\n%s",
		strconv.FormatFloat(s.Temp, 'f', -1, 64),
		s.Condition,
		Advise(s).Message(),
	)
}
