package telegram

import (
	"fmt"
	"strings"

	"golang-competitive-intel/internal/analyzer/dto"
	"golang-competitive-intel/internal/entity"
)

// FormatAnalysisReport formats a finalized analysis run into Markdown
// messages for Telegram, splitting so no part exceeds the API limit.
func FormatAnalysisReport(report *dto.AnalysisReport) []string {
	const maxLen = 4090

	var header strings.Builder
	run := report.Run

	statusIcon := "✅"
	switch run.Status {
	case entity.RunStatusFailed:
		statusIcon = "❌"
	case entity.RunStatusPartial:
		statusIcon = "⚠️"
	}

	header.WriteString(fmt.Sprintf("%s *Competitive Intelligence Report* — %s\n\n", statusIcon, run.RunDate.Format("2006-01-02")))
	header.WriteString(fmt.Sprintf("🔎 *Mode:* %s\n", run.Mode))
	header.WriteString(fmt.Sprintf("📰 *Findings:* %d\n", run.FindingsCount))
	header.WriteString(fmt.Sprintf("🏢 *Competitor updates:* %d\n", run.CompetitorUpdatesCount))
	header.WriteString(fmt.Sprintf("📈 *Trends updated:* %d\n", run.TrendsUpdatedCount))
	header.WriteString(fmt.Sprintf("💡 *Opportunities:* %d\n", run.OpportunitiesIdentified))
	if len(run.DegradedSources) > 0 {
		header.WriteString(fmt.Sprintf("⚠️ *Degraded sources:* %d\n", len(run.DegradedSources)))
	}
	header.WriteString(fmt.Sprintf("⏱ *Execution:* %.1fs\n", run.ExecutionTimeSeconds))

	if run.KeyInsights != "" {
		header.WriteString(fmt.Sprintf("\n🧠 *Key insights:*\n%s\n", run.KeyInsights))
	}
	if len(run.Recommendations) > 0 {
		header.WriteString("\n📋 *Recommendations:*\n")
		for i, rec := range run.Recommendations {
			header.WriteString(fmt.Sprintf("%d. %s\n", i+1, rec))
		}
	}

	messages := []string{header.String()}
	var current strings.Builder

	if len(report.TopOpportunities) > 0 {
		current.WriteString("💡 *Top Opportunities*\n\n")
		for i, opp := range report.TopOpportunities {
			var entry strings.Builder
			priorityIcon := "🟡"
			switch opp.Priority {
			case entity.PriorityHigh:
				priorityIcon = "🟢"
			case entity.PriorityLow:
				priorityIcon = "⚪"
			}
			entry.WriteString(fmt.Sprintf("%s *%d. %s* (%.2f)\n", priorityIcon, i+1, opp.Title, opp.Score))
			entry.WriteString(fmt.Sprintf("   %s\n", opp.MarketGap))
			entry.WriteString(fmt.Sprintf("   ⏳ %s · 💰 %s\n\n", opp.TimeToMarket, opp.PotentialRevenue))

			if current.Len()+entry.Len() > maxLen {
				messages = append(messages, current.String())
				current.Reset()
				current.WriteString("💡 *Top Opportunities (continued)*\n\n")
			}
			current.WriteString(entry.String())
		}
	}

	if len(report.TopTrends) > 0 {
		var trendsSection strings.Builder
		trendsSection.WriteString("📈 *Top Trends*\n\n")
		for _, trend := range report.TopTrends {
			trendsSection.WriteString(fmt.Sprintf("• %s (%s) — momentum %.2f\n", trend.TrendName, trend.Category, trend.MomentumScore))
		}
		if current.Len()+trendsSection.Len() > maxLen {
			messages = append(messages, current.String())
			current.Reset()
		}
		current.WriteString(trendsSection.String())
	}

	if current.Len() > 0 {
		messages = append(messages, current.String())
	}
	return messages
}
