package models

import (
	"fmt"
	"strings"
)

// AlertStatus tags the outcome of an alert feed lookup
type AlertStatus int

const (
	AlertsNone AlertStatus = iota
	AlertsActive
	AlertsUnavailable
)

func (s AlertStatus) String() string {
	switch s {
	case AlertsActive:
		return "active"
	case AlertsUnavailable:
		return "unavailable"
	default:
		return "none"
	}
}

// AreaAlert lists the warning kinds currently issued for one area
type AreaAlert struct {
	Area  string   `json:"area"`
	Kinds []string `json:"kinds"`
}

// AlertReport is the result of one alert feed lookup for a region
type AlertReport struct {
	Status AlertStatus `json:"status"`
	Region string      `json:"region"`
	Areas  []AreaAlert `json:"areas,omitempty"`
	Issued string      `json:"issued,omitempty"`
}

// UnavailableReport is returned whenever either fetch stage fails
func UnavailableReport(region string) AlertReport {
	return AlertReport{Status: AlertsUnavailable, Region: region}
}

// Format renders the report as the digest alert block
func (r AlertReport) Format() string {
	switch r.Status {
	case AlertsUnavailable:
		return "⚠️ 警報情報を取得できませんでした。"
	case AlertsActive:
		lines := make([]string, 0, len(r.Areas))
		for _, a := range r.Areas {
			lines = append(lines, fmt.Sprintf("【%s】%s", a.Area, strings.Join(a.Kinds, "・")))
		}
		return fmt.Sprintf("⚠️ **%s 気象警報・注意報**\n%s\n警報・注意報 発表：%s",
			r.Region, strings.Join(lines, "\n"), r.Issued)
	default:
		return fmt.Sprintf("✅ 現在、%sに警報・注意報はありません。", r.Region)
	}
}
