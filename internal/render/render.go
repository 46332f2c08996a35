// Package render produces Markdown and plain-text output from scoring results.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/lint"
	"github.com/euroalt/trustscore/internal/redact"
	"github.com/euroalt/trustscore/internal/scoring"
)

// Markdown renders a scoring report as a Markdown table followed by any
// flags that need editorial review.
func Markdown(r *catalog.Report) string {
	var b strings.Builder

	b.WriteString("# Trust Scores\n\n")
	fmt.Fprintf(&b, "**Data:** %s\n", r.DataHash)
	fmt.Fprintf(&b, "**Scored at:** %s\n", r.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "**Entries:** %d (%d flags)\n\n", len(r.Entries), r.FlagCount())

	b.WriteString("| Entry | Class | Score | Status | Cap | Penalty |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, s := range r.Entries {
		bd := s.Result.Breakdown
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			entryLabel(s.Entry), bd.BaseClass, num(s.Score), s.Status, capLabel(bd.CapApplied), num(bd.PenaltyTotal))
	}
	b.WriteString("\n")

	if r.FlagCount() > 0 {
		b.WriteString("## Needs Review\n\n")
		for _, s := range r.Entries {
			for _, f := range s.Result.Flags {
				fmt.Fprintf(&b, "- **%s** `%s` %s\n", s.Entry.ID, f.Code, f.Message)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Explain renders the "why this score" panel for a single entry.
func Explain(s catalog.Scored) string {
	var b strings.Builder
	bd := s.Result.Breakdown

	fmt.Fprintf(&b, "# %s\n\n", entryLabel(s.Entry))
	fmt.Fprintf(&b, "**Score:** %s / 10 (%s)\n", num(s.Score), s.Status)
	if s.Pinned != nil {
		fmt.Fprintf(&b, "**Computed:** %s / 10, display pinned by editors\n", num(s.Result.Score))
	}
	fmt.Fprintf(&b, "**Base class:** %s (base %s, cap %s)\n", bd.BaseClass, num(bd.BaseScore), num(bd.ClassCap))
	vetted := "no, reduced baseline"
	if bd.Vetted {
		vetted = "yes"
	}
	fmt.Fprintf(&b, "**Vetted:** %s\n", vetted)
	if bd.AdSurveillance {
		fmt.Fprintf(&b, "**Ad-surveillance funded:** capped at %s\n", num(scoring.AdSurveillanceCap))
	}
	b.WriteString("\n")

	b.WriteString("## Dimensions\n\n")
	b.WriteString("| Dimension | Baseline | Signals | Penalties | Effective |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, d := range scoring.Dimensions {
		db := bd.Dimensions[d]
		fmt.Fprintf(&b, "| %s | %s | +%s | -%s | %s / %s |\n",
			d, num(db.Baseline), num(db.Signals), num(db.Penalties), num(db.Effective), num(db.Max))
	}
	b.WriteString("\n")

	if len(bd.SignalItems) > 0 {
		b.WriteString("## Positive Signals\n\n")
		for _, si := range bd.SignalItems {
			fmt.Fprintf(&b, "- +%s %s: %s%s%s\n", num(si.Amount), si.Dimension, label(si.Text, si.ID), estimatedMark(si.Estimated), source(si.SourceURL))
		}
		b.WriteString("\n")
	}

	if len(bd.ReservationItems) > 0 {
		b.WriteString("## Reservations\n\n")
		for _, ri := range bd.ReservationItems {
			fmt.Fprintf(&b, "- -%s %s: %s%s%s\n", num(ri.Amount), ri.Tier, label(ri.Text, ri.ID), estimatedMark(ri.Estimated), source(ri.SourceURL))
			fmt.Fprintf(&b, "  raw %s x %s (%s)", num(ri.RawAmount), num(ri.Multiplier), dateLabel(ri.Date))
			if bd.PenaltyScale < 1 {
				fmt.Fprintf(&b, " x %s scale", num(bd.PenaltyScale))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Composition\n\n")
	fmt.Fprintf(&b, "%s base + %s operational - %s penalties = %s\n",
		num(bd.BaseScore), num(bd.OperationalTotal), num(bd.PenaltyTotal), num(bd.RawScore))
	if bd.RawPenaltyTotal > bd.PenaltyTotal {
		fmt.Fprintf(&b, "\nPenalties of %s were scaled to the cumulative cap of %s.\n",
			num(bd.RawPenaltyTotal), num(scoring.CumulativePenaltyCap))
	}
	if bd.CapApplied != nil {
		fmt.Fprintf(&b, "\nCapped at %s.\n", num(*bd.CapApplied))
	}
	fmt.Fprintf(&b, "\nFinal: %s / 100\n", num(bd.FinalScore100))

	if len(s.Result.Flags) > 0 {
		b.WriteString("\n## Needs Review\n\n")
		for _, f := range s.Result.Flags {
			fmt.Fprintf(&b, "- `%s` %s\n", f.Code, f.Message)
		}
	}

	return b.String()
}

// Text renders a report as aligned plain-text lines.
func Text(r *catalog.Report) string {
	var b strings.Builder
	width := len("ENTRY")
	for _, s := range r.Entries {
		width = max(width, len(s.Entry.ID))
	}
	fmt.Fprintf(&b, "%-*s  %-9s  %5s  %-7s  %s\n", width, "ENTRY", "CLASS", "SCORE", "STATUS", "FLAGS")
	for _, s := range r.Entries {
		fmt.Fprintf(&b, "%-*s  %-9s  %5.1f  %-7s  %d\n",
			width, s.Entry.ID, s.Result.Breakdown.BaseClass, s.Score, s.Status, len(s.Result.Flags))
	}
	return b.String()
}

// Findings renders lint findings one per line, errors first.
func Findings(fs []lint.Finding) string {
	if len(fs) == 0 {
		return "No problems found.\n"
	}
	var b strings.Builder
	for _, level := range []lint.Level{lint.LevelError, lint.LevelWarning} {
		for _, f := range fs {
			if f.Level == level {
				fmt.Fprintf(&b, "%s: %s\n", f.Level, f)
			}
		}
	}
	errs, warns := lint.Count(fs)
	fmt.Fprintf(&b, "\n%d errors, %d warnings\n", errs, warns)
	return b.String()
}

func entryLabel(e scoring.Entry) string {
	if e.Name == "" || e.Name == e.ID {
		return e.ID
	}
	return fmt.Sprintf("%s (%s)", e.Name, e.ID)
}

func label(text, id string) string {
	if text == "" {
		return id
	}
	return redact.Text(text)
}

func capLabel(c *float64) string {
	if c == nil {
		return "-"
	}
	return num(*c)
}

func dateLabel(d string) string {
	if d == "" {
		return "undated"
	}
	return d
}

func estimatedMark(estimated bool) string {
	if estimated {
		return " _(estimated)_"
	}
	return ""
}

func source(url string) string {
	if url == "" {
		return ""
	}
	return fmt.Sprintf(" ([source](%s))", redact.URL(url))
}

// num formats v with at most two decimals and no trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
