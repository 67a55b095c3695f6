package tui

import (
	"fmt"
	"strings"
	"time"

	"flipnews/internal/models"

	"github.com/charmbracelet/lipgloss"
)

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// pagerDots renders one dot per article on the page, filled at index.
func pagerDots(index, n int) string {
	dots := make([]string, n)
	for i := range dots {
		if i == index {
			dots[i] = "●"
		} else {
			dots[i] = "○"
		}
	}
	return strings.Join(dots, " ")
}

func renderCard(a models.Article, favorite bool, width int) string {
	if width < 20 {
		width = 60
	}
	inner := width - 6

	marker := "☆"
	if favorite {
		marker = favoriteStyle.Render("★")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Width(inner).Render(a.Title))
	b.WriteString("\n")

	meta := sourceStyle.Render(a.Source)
	if rel := relativeTime(a.PublishedAt); rel != "" {
		meta += " " + timeStyle.Render("· "+rel)
	}
	b.WriteString(marker + " " + meta)
	b.WriteString("\n\n")

	body := a.Description
	if body == "" {
		body = a.Snippet
	}
	if body != "" {
		b.WriteString(bodyStyle.Width(inner).Render(body))
		b.WriteString("\n\n")
	}
	b.WriteString(linkStyle.Render(truncateStr(a.URL, inner)))

	return cardStyle.Width(width - 2).Render(b.String())
}

func renderMessage(text string, width int) string {
	if width < 20 {
		width = 60
	}
	return cardStyle.Width(width - 2).Render(text)
}

func renderTabs(categories []string, active string, search string) string {
	if search != "" {
		return tabActiveStyle.Render("search: " + search)
	}
	tabs := make([]string, 0, len(categories))
	for _, c := range categories {
		if c == active {
			tabs = append(tabs, tabActiveStyle.Render(c))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(c))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderStatusBar(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return statusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}
