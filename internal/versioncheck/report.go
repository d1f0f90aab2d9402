package versioncheck

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/obentoo/bakecheck/internal/bakefile"
	"github.com/obentoo/bakecheck/internal/common/output"
)

// statusWidth is the fixed width of the STATUS column ("OUTDATED").
const statusWidth = 8

// noLatest is shown in the LATEST column when upstream is unknown.
const noLatest = "-"

// WriteTable renders outcomes as a fixed-width table. Columns are sized to
// their widest cell; notes go on a continuation line under the SOURCE column.
func WriteTable(w io.Writer, outcomes []Outcome) error {
	nameW, curW, latestW := len("NAME"), len("CURRENT"), len("LATEST")
	for _, o := range outcomes {
		nameW = max(nameW, len(o.Name))
		curW = max(curW, len(o.Current))
		latestW = max(latestW, len(latestCell(o)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %-*s  %s\n",
		nameW, "NAME", curW, "CURRENT", latestW, "LATEST", statusWidth, "STATUS", "SOURCE")
	fmt.Fprintf(&b, "%s  %s  %s  %s  %s\n",
		strings.Repeat("-", nameW), strings.Repeat("-", curW), strings.Repeat("-", latestW),
		strings.Repeat("-", statusWidth), strings.Repeat("-", len("SOURCE")))

	indent := strings.Repeat(" ", nameW+curW+latestW+statusWidth+8)
	for _, o := range outcomes {
		// Pad before coloring so escape codes don't skew the columns
		status := fmt.Sprintf("%-*s", statusWidth, o.Status.Label())
		fmt.Fprintf(&b, "%-*s  %-*s  %-*s  %s  %s\n",
			nameW, o.Name, curW, o.Current, latestW, latestCell(o),
			output.Status(o.Status.Label(), status), o.Source)
		if o.Note != "" {
			fmt.Fprintf(&b, "%s%s\n", indent, output.Note("note: %s", o.Note))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// latestCell returns the LATEST column text.
func latestCell(o Outcome) string {
	if o.HasLatest() {
		return o.Latest
	}
	return noLatest
}

// outcomeRecord is the JSON form of an Outcome
type outcomeRecord struct {
	Name    string  `json:"name"`
	Current string  `json:"current"`
	Latest  *string `json:"latest"`
	Status  Status  `json:"status"`
	Source  string  `json:"source"`
	Note    *string `json:"note"`
}

// WriteJSON renders outcomes as an indented JSON array. Absent latest
// versions and notes are encoded as null.
func WriteJSON(w io.Writer, outcomes []Outcome) error {
	records := make([]outcomeRecord, 0, len(outcomes))
	for _, o := range outcomes {
		rec := outcomeRecord{
			Name:    o.Name,
			Current: o.Current,
			Status:  o.Status,
			Source:  o.Source,
		}
		if o.HasLatest() {
			latest := o.Latest
			rec.Latest = &latest
		}
		if o.Note != "" {
			note := o.Note
			rec.Note = &note
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// VarsOptions controls WriteVars output.
type VarsOptions struct {
	// Only restricts output to these names; empty means all
	Only []string
	// Export prefixes every line with "export "
	Export bool
}

// WriteVars prints resolved variables as shell-sourceable NAME=value lines,
// sorted by name. Values are quoted so the output can be eval'd safely.
func WriteVars(w io.Writer, vars *bakefile.Variables, opts VarsOptions) error {
	wanted := make(map[string]bool, len(opts.Only))
	for _, name := range opts.Only {
		wanted[name] = true
	}

	prefix := ""
	if opts.Export {
		prefix = "export "
	}

	var b strings.Builder
	for _, name := range vars.SortedNames() {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		value, ok := vars.Resolve(name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s%s=%s\n", prefix, name, shellescape.Quote(value))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteChanges lists applied (or previewed) changes as "NAME  old -> new" lines.
func WriteChanges(w io.Writer, changes []Change) error {
	nameW := 0
	for _, c := range changes {
		nameW = max(nameW, len(c.Name))
	}

	var b strings.Builder
	for _, c := range changes {
		fmt.Fprintf(&b, "  %-*s  %s -> %s\n", nameW, c.Name, c.Old, output.NewValue(c.New))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
