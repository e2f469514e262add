// Package report renders daily activity totals for the terminal or as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"Mansoor88-6/code-activity-agent/internal/stats"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4A90E2")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	emptyStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#888888"))
)

// Render writes the day's totals as tables by language, project and file.
// top limits the rows per table; 0 means all.
func Render(w io.Writer, day *stats.DailyStats, top int) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Activity for " + day.Date))
	b.WriteString("\n\n")

	if day.TotalTime == 0 {
		b.WriteString(emptyStyle.Render("No tracked activity."))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "Total: %s\n\n", totalStyle.Render(HumanDuration(day.TotalTime)))

	b.WriteString(breakdown("Language", day.ByLanguage, day.TotalTime, top, nil))
	b.WriteString("\n")
	if len(day.ByProject) > 0 {
		b.WriteString(breakdown("Project", day.ByProject, day.TotalTime, top, nil))
		b.WriteString("\n")
	}
	b.WriteString(breakdown("File", day.ByFile, day.TotalTime, top, shortPath))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func breakdown(title string, m map[string]time.Duration, total time.Duration, top int, label func(string) string) string {
	items := stats.Ranked(m)
	if top > 0 && len(items) > top {
		items = items[:top]
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		key := it.Key
		if label != nil {
			key = label(key)
		}
		rows = append(rows, []string{key, HumanDuration(it.Duration), percent(it.Duration, total)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#874BFD"))).
		Headers(title, "Time", "Share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render()
}

// shortPath keeps the last two path elements
func shortPath(p string) string {
	dir, file := filepath.Split(filepath.Clean(p))
	parent := filepath.Base(dir)
	if parent == "." || parent == string(filepath.Separator) || dir == "" {
		return file
	}
	return filepath.Join(parent, file)
}

func percent(d, total time.Duration) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(d)*100/float64(total))
}

// HumanDuration formats d as "1h 05m", "12m 30s" or "45s"
func HumanDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

type jsonItem struct {
	Key     string  `json:"key"`
	Seconds float64 `json:"seconds"`
}

type jsonDay struct {
	Date         string     `json:"date"`
	TotalSeconds float64    `json:"total_seconds"`
	Languages    []jsonItem `json:"languages"`
	Projects     []jsonItem `json:"projects"`
	Files        []jsonItem `json:"files"`
}

// WriteJSON writes the day's totals in seconds, each breakdown ranked by time
func WriteJSON(w io.Writer, day *stats.DailyStats) error {
	out := jsonDay{
		Date:         day.Date,
		TotalSeconds: day.TotalTime.Seconds(),
		Languages:    toJSONItems(day.ByLanguage),
		Projects:     toJSONItems(day.ByProject),
		Files:        toJSONItems(day.ByFile),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func toJSONItems(m map[string]time.Duration) []jsonItem {
	items := stats.Ranked(m)
	out := make([]jsonItem, 0, len(items))
	for _, it := range items {
		out = append(out, jsonItem{Key: it.Key, Seconds: it.Duration.Seconds()})
	}
	return out
}
