package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/rajasatyajit/bousai/internal/models"
)

// UnknownDescription stands in for the weather description when no snapshot is available
const UnknownDescription = "不明"

// Digest is everything one post is built from
type Digest struct {
	City      string
	Date      time.Time
	Weather   models.Snapshot
	Alerts    models.AlertReport
	Checklist string
	Mention   string
}

// Compose renders the channel post
func Compose(d Digest) string {
	desc := d.Weather.Description
	if !d.Weather.OK || desc == "" {
		desc = UnknownDescription
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 **%sの天気（%s）**\n", d.City, d.Date.Format("01/02"))
	fmt.Fprintf(&b, "☀️ 天気：%s\n", desc)
	fmt.Fprintf(&b, "🌡 現在：%.1f℃\n", d.Weather.Temp)
	fmt.Fprintf(&b, "⬆ 最高：%.1f℃\n", d.Weather.TempMax)
	fmt.Fprintf(&b, "⬇ 最低：%.1f℃\n\n", d.Weather.TempMin)
	b.WriteString(d.Alerts.Format())
	b.WriteString("\n")

	if d.Checklist != "" {
		b.WriteString("\n")
		b.WriteString(d.Checklist)
		b.WriteString("\n")
	}

	if d.Mention != "" {
		b.WriteString("\n")
		b.WriteString(d.Mention)
	}
	return b.String()
}
