// Package output renders profile listings, the active record, and
// verification reports in the supported output formats.
package output

import (
	"fmt"
	"io"

	"github.com/systune-dev/systune/internal/config"
	"github.com/systune-dev/systune/internal/switcher"
)

// TableFormatter writes the plain human-readable format.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// FormatList writes one `<id> - <summary>` line per profile, followed by the
// active profile line.
func (f *TableFormatter) FormatList(profiles []config.Summary, active string) error {
	fmt.Fprintln(f.writer, "Available profiles:")
	for _, p := range profiles {
		fmt.Fprintf(f.writer, "%s - %s\n", p.ID, p.Summary)
	}
	return f.FormatActive(active)
}

// FormatActive writes the active profile line.
func (f *TableFormatter) FormatActive(active string) error {
	_, err := fmt.Fprintf(f.writer, "Current active profile: %s\n", active)
	return err
}

// FormatVerify writes a verification report.
func (f *TableFormatter) FormatVerify(report *switcher.VerifyReport) error {
	if report.Profile == "" || report.Profile == "none" {
		fmt.Fprintln(f.writer, "No profile is active; nothing to verify.")
		return nil
	}

	fmt.Fprintf(f.writer, "Verifying profile: %s\n", report.Profile)
	for _, m := range report.Mismatches {
		fmt.Fprintf(f.writer, "MISMATCH %s: expected %q (from %s), got %q\n",
			m.Key, m.Expected, m.Origin, m.Actual)
	}
	for _, key := range report.Skipped {
		fmt.Fprintf(f.writer, "skipped %s: not supported on this host\n", key)
	}

	if report.OK() {
		fmt.Fprintf(f.writer, "Verification succeeded: %d settings match.\n", report.Checked)
	} else {
		fmt.Fprintf(f.writer, "Verification failed: %d of %d settings differ.\n",
			len(report.Mismatches), report.Checked)
	}
	return nil
}
