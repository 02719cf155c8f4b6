// Package report renders predictions for people.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agenthands/healthrisk/internal/core/model"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

const wordWrap = 100

// Markdown renders a prediction as a Markdown document.
func Markdown(p *model.Prediction) string {
	var b strings.Builder
	env := p.EnvironmentalConditions

	if name := oneLine(p.ProfileName); name != "" {
		fmt.Fprintf(&b, "# Health risk report for %s\n\n", name)
	} else {
		b.WriteString("# Health risk report\n\n")
	}
	fmt.Fprintf(&b, "Generated %s · prediction `%s`\n\n", p.GeneratedAt.Format("2006-01-02 15:04 MST"), p.ID)

	b.WriteString("## Environment\n\n")
	b.WriteString("| Parameter | Value |\n|---|---|\n")
	row(&b, "District", env.District)
	row(&b, "Season", env.Season)
	row(&b, "Weeks since monsoon peak", fmt.Sprint(env.WeeksSinceMonsoonPeak))
	row(&b, "Days since last rain", fmt.Sprint(env.DaysSinceLastRain))
	row(&b, "Hour of day", fmt.Sprintf("%d:00", env.HourOfDay))
	row(&b, "AQI", fmt.Sprint(env.AQI))
	row(&b, "Temperature", fmt.Sprintf("%.1f °C", env.TemperatureC))
	if env.HumidityPct > 0 {
		row(&b, "Humidity", fmt.Sprintf("%.0f%%", env.HumidityPct))
	}
	row(&b, "Vector index", fmt.Sprintf("%d%%", env.LocalVectorIndex))
	if env.LocalOutbreakAlert != "" {
		row(&b, "Outbreak alert", env.LocalOutbreakAlert)
	}
	row(&b, "Source", env.Source)
	b.WriteString("\n")

	if len(p.Symptoms) > 0 {
		fmt.Fprintf(&b, "**Reported symptoms:** %s\n\n", oneLine(strings.Join(p.Symptoms, ", ")))
	}

	for _, a := range p.RiskAssessments {
		fmt.Fprintf(&b, "## %s: %s (score %s)\n\n", a.Disease, a.Level, number(a.Score))
		b.WriteString("| Factor | Value | Score |\n|---|---|---:|\n")
		for _, d := range a.Details {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", escape(d.Param), escape(d.Value), number(d.Score))
		}
		b.WriteString("\n")
	}

	if p.Narrative != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(p.Narrative)
		b.WriteString("\n")
	}
	return b.String()
}

// Render writes md to w, styled for the terminal when tty is true.
// Styling failures fall back to the plain Markdown.
func Render(w io.Writer, md string, tty bool) error {
	out := md
	if tty {
		r, err := glamour.NewTermRenderer(
			glamour.WithEnvironmentConfig(),
			glamour.WithWordWrap(wordWrap),
		)
		if err == nil {
			if s, err := r.Render(md); err == nil {
				out = s
			}
		}
	}
	_, err := io.WriteString(w, out)
	return err
}

// IsTTY reports whether v is a terminal.
func IsTTY(v any) bool {
	if f, ok := v.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

func row(b *strings.Builder, k, v string) {
	fmt.Fprintf(b, "| %s | %s |\n", k, escape(v))
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// oneLine keeps user and upstream text from breaking headings and table rows.
func oneLine(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

func escape(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}

// number drops the decimal part of whole scores.
func number(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.1f", f)
}
