package fsutil

import (
	"bufio"
	"bytes"
	"strings"
)

// ParseManifest reads the main section of a JAR manifest. Continuation
// lines (leading single space) are joined onto the previous attribute and
// parsing stops at the first blank line.
func ParseManifest(data []byte) map[string]string {
	attrs := make(map[string]string)
	var last string

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, " ") && last != "" {
			attrs[last] += line[1:]
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		last = strings.TrimSpace(k)
		attrs[last] = strings.TrimSpace(v)
	}
	return attrs
}
