package bakefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/hashicorp/hcl/v2/hclparse"
)

// Error variables for rewrite errors
var (
	// ErrWriteFile is returned when the bake file cannot be written
	ErrWriteFile = errors.New("could not write bake file")
	// ErrInvalidHCL is returned when rewritten text no longer parses as HCL
	ErrInvalidHCL = errors.New("rewritten bake file is not valid HCL")
)

// defaultPattern builds the pattern locating one variable's default.
// Groups 1 and 3 capture the surrounding block syntax so it can be kept verbatim.
func defaultPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(variable\s+"` + regexp.QuoteMeta(name) + `"\s*\{\s*default\s*=\s*)"[^"]*"(\s*\})`)
}

// Rewrite replaces the quoted default of the named variable with value.
// It reports false when the variable isn't declared or already holds value;
// in both cases text is returned unchanged.
func Rewrite(text, name, value string) (string, bool) {
	re := defaultPattern(name)
	if !re.MatchString(text) {
		return text, false
	}

	updated := re.ReplaceAllStringFunc(text, func(match string) string {
		groups := re.FindStringSubmatch(match)
		return groups[1] + `"` + value + `"` + groups[2]
	})

	return updated, updated != text
}

// Validate checks that text still parses as HCL.
// filename is only used in diagnostics.
func Validate(text, filename string) error {
	parser := hclparse.NewParser()
	_, diags := parser.ParseHCL([]byte(text), filename)
	if diags.HasErrors() {
		return fmt.Errorf("%w: %s", ErrInvalidHCL, diags.Error())
	}
	return nil
}

// WriteFile replaces the bake file at path with text.
// The write goes to a temp file in the same directory first and is renamed
// into place, so a failed write never leaves a truncated file behind.
// The original file mode is preserved. A symlinked path is resolved first
// so the link survives and its target is updated. Owner and group are
// those of the writing user.
func WriteFile(path, text string) error {
	if target, err := filepath.EvalSymlinks(path); err == nil {
		path = target
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrWriteFile, path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w %q: %v", ErrWriteFile, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w %q: %v", ErrWriteFile, path, err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w %q: %v", ErrWriteFile, path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Clean up temp file on rename failure
		os.Remove(tmpPath)
		return fmt.Errorf("%w %q: %v", ErrWriteFile, path, err)
	}

	return nil
}
