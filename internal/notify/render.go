package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/inventory"
)

// Message kinds
const (
	KindCritical = "critical"
	KindRecovery = "recovery"
	KindDigest   = "digest"
)

// CriticalData describes a sustained branch outage
type CriticalData struct {
	BranchCode string
	BranchName string
	ErrorKind  string
	Since      time.Time
	Duration   time.Duration
}

// RecoveryData describes a branch coming back after a critical outage
type RecoveryData struct {
	BranchCode string
	BranchName string
	Duration   time.Duration
}

// DigestData describes the expiration digest
type DigestData struct {
	GeneratedAt time.Time
	AlertDays   int
	Items       []inventory.ItemView
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func branchLabel(code, name string) string {
	if name != "" {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	return code
}

// RenderCritical builds the sustained-outage notification body
func RenderCritical(data CriticalData) string {
	var b strings.Builder
	b.WriteString("🚨 *ALERT: branch offline*\n\n")
	fmt.Fprintf(&b, "Branch: %s\n", branchLabel(data.BranchCode, data.BranchName))
	fmt.Fprintf(&b, "Problem: %s\n", data.ErrorKind)
	fmt.Fprintf(&b, "Since: %s\n", data.Since.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Down for: %s\n", formatDuration(data.Duration))
	return b.String()
}

// RenderRecovery builds the branch-recovered notification body
func RenderRecovery(data RecoveryData) string {
	var b strings.Builder
	b.WriteString("✅ *Branch back online*\n\n")
	fmt.Fprintf(&b, "Branch: %s\n", branchLabel(data.BranchCode, data.BranchName))
	fmt.Fprintf(&b, "Total downtime: %s\n", formatDuration(data.Duration))
	return b.String()
}

// RenderDigest builds the expiring-products digest. Items already past their
// expiration date are called out as expired.
func RenderDigest(data DigestData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Expiration report* - %s\n", data.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Products expiring within %d days: %d\n\n", data.AlertDays, len(data.Items))

	for _, item := range data.Items {
		label := inventory.FeedLabel(item.DaysRemaining)
		switch label {
		case inventory.UrgencyExpired:
			fmt.Fprintf(&b, "❌ %s - %s (expired %d days ago)\n",
				item.Barcode, item.Description, -item.DaysRemaining)
		case inventory.UrgencyCritical:
			fmt.Fprintf(&b, "🔴 %s - %s (%d days left)\n",
				item.Barcode, item.Description, item.DaysRemaining)
		case inventory.UrgencyWarning:
			fmt.Fprintf(&b, "🟡 %s - %s (%d days left)\n",
				item.Barcode, item.Description, item.DaysRemaining)
		default:
			fmt.Fprintf(&b, "🟢 %s - %s (%d days left)\n",
				item.Barcode, item.Description, item.DaysRemaining)
		}
	}

	if len(data.Items) == 0 {
		b.WriteString("Nothing close to expiration. ✨\n")
	}
	return b.String()
}
