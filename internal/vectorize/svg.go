package vectorize

import (
	"fmt"
	"regexp"
	"strings"
)

var fillAttrRe = regexp.MustCompile(` ?fill="[^"]*"`)

// normalizeSVG prepares vtracer output for stroke animation: it guarantees a
// viewBox and rewrites every path to an unfilled black stroke, since the
// animator draws outlines, not fills.
func normalizeSVG(svg []byte, width, height int) []byte {
	s := string(svg)

	if !strings.Contains(s, "viewBox") {
		s = strings.Replace(s, "<svg", fmt.Sprintf(`<svg viewBox="0 0 %d %d"`, width, height), 1)
	}

	s = fillAttrRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "<path", `<path stroke="#000000" stroke-width="2" fill="none"`)

	return []byte(s)
}
