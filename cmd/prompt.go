// File: cmd/prompt.go
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
	"github.com/xkilldash9x/feedback-cli/internal/config"
)

// isTerminal and readPassword are replaced in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// printBanner shows what the run is about to do.
func printBanner(w io.Writer, cfg config.Interface, items []schemas.SubmissionItem) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	heading := r.NewStyle().Foreground(lipgloss.Color("5"))
	box := r.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("3")).
		Padding(0, 1).
		Width(72)

	counts := config.ConfiguredCounts(items)
	var b strings.Builder
	b.WriteString(title.Render("FEEDBACK AUTOMATION"))
	b.WriteString("\n\n")
	b.WriteString("Fills the IQAC feedback forms of the student portal for you.\n\n")
	b.WriteString(heading.Render("Planned:"))
	b.WriteString("\n")
	for _, c := range schemas.Categories {
		fmt.Fprintf(&b, "  %-10s %d form(s)\n", c.Title(), counts[c])
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Mode: %s   Rating: %s", cfg.Portal().ModeName(), cfg.Feedback().Option)
	if enrollment := cfg.Credentials().EnrollmentNo; enrollment != "" {
		fmt.Fprintf(&b, "   Enrollment: %s", enrollment)
	}
	b.WriteString("\n\n")
	b.WriteString(heading.Render("Notes:"))
	b.WriteString("\n")
	b.WriteString("  Forms the portal reports as already submitted are skipped.\n")
	b.WriteString("  Keep the browser window open until the run finishes.")

	fmt.Fprintln(w, box.Render(b.String()))
}

// printPlan lists every item a run would attempt.
func printPlan(w io.Writer, cfg config.Interface, items []schemas.SubmissionItem) {
	fmt.Fprintf(w, "Planned submissions (mode %s, rating %q):\n", cfg.Portal().ModeName(), cfg.Feedback().Option)
	if len(items) == 0 {
		fmt.Fprintln(w, "  none configured")
		return
	}
	for _, c := range schemas.Categories {
		for _, item := range items {
			if item.Category != c {
				continue
			}
			line := "  " + item.String()
			if !item.Required || item.SecondaryLabel == "" {
				line += " (will be skipped: incomplete)"
			}
			fmt.Fprintln(w, line)
		}
	}
}

// confirmStart asks whether to begin. Only Y and YES start the run.
func confirmStart(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "Should I start filling your feedback? (Y/N): ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	switch strings.ToUpper(strings.TrimSpace(line)) {
	case "Y", "YES":
		return true, nil
	default:
		return false, nil
	}
}

// promptPassword asks for the portal password when none is configured and
// stdin is a terminal. Otherwise validation reports the missing password.
func promptPassword(cfg *config.Config, out io.Writer) error {
	if cfg.CredentialsCfg.Password != "" {
		return nil
	}
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return nil
	}
	fmt.Fprint(out, "Portal password: ")
	secret, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	cfg.CredentialsCfg.Password = strings.TrimSpace(string(secret))
	return nil
}
