package orchestrator

import (
	"bufio"
	"os"
	"strings"

	"github.com/quakego/hdd/internal/errors"
)

// hypoDD2Marker is the literal token hypoDD v2's first control-file line
// carries; its presence shifts every subsequent line index referenced below
// by one.
const hypoDD2Marker = "hypoDD_2"

// controlFileLine names one line of a control file template by its
// canonical (v1) index, and the replacement hypoDD/ph2dt expects there.
type controlFileLine struct {
	index       int
	replacement string
}

// renderControlFile copies the template at templatePath into dstPath,
// overwriting the lines named in overrides with their replacement text.
// Line indices in overrides are v1 indices; if the template's first line is
// the literal hypoDD_2 marker, every override is applied one line later to
// account for the v2 header.
func renderControlFile(templatePath, dstPath string, overrides []controlFileLine) error {
	src, err := os.Open(templatePath)
	if err != nil {
		return errors.New(err).Category(errors.CategoryExternalTool).
			Context("template", templatePath).Build()
	}
	defer src.Close() //nolint:errcheck

	var lines []string
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return errors.New(err).Category(errors.CategoryExternalTool).
			Context("template", templatePath).Build()
	}

	shift := 0
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == hypoDD2Marker {
		shift = 1
	}

	for _, ov := range overrides {
		idx := ov.index + shift
		if idx < 0 || idx >= len(lines) {
			return errors.Newf("control file %s has %d lines, override targets index %d", templatePath, len(lines), idx).
				Category(errors.CategoryExternalTool).Build()
		}
		lines[idx] = ov.replacement
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return errors.New(err).Category(errors.CategoryExternalTool).
			Context("dest", dstPath).Build()
	}
	defer dst.Close() //nolint:errcheck

	w := bufio.NewWriter(dst)
	for _, l := range lines {
		if _, err := w.WriteString(l + "\n"); err != nil {
			return errors.New(err).Category(errors.CategoryExternalTool).Build()
		}
	}
	return w.Flush()
}
