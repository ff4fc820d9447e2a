package locator

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	cliVersionRegex = regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+(?:-[0-9A-Za-z.]+)?)`)
	nodeOutputRegex = regexp.MustCompile(`v?([0-9]+\.[0-9]+\.[0-9]+)`)
	nodePathRegex   = regexp.MustCompile(`v([0-9]+\.[0-9]+\.[0-9]+)`)
)

// ExtractVersion pulls the first semantic version out of `claude --version`
// output such as "1.0.17 (Claude Code)". It returns "" when none is present.
func ExtractVersion(output string) string {
	return cliVersionRegex.FindString(firstLine(strings.TrimSpace(output)))
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

func nodeVersionFromOutput(output string) string {
	if m := nodeOutputRegex.FindStringSubmatch(firstLine(strings.TrimSpace(output))); m != nil {
		return m[1]
	}
	return ""
}

func nodeVersionFromPath(path string) string {
	if m := nodePathRegex.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

// MeetsMinimum reports whether version is at least minimum. An empty minimum
// is always met; an empty version never is.
func MeetsMinimum(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	if version == "" {
		return false
	}

	vParts := numericParts(version)
	mParts := numericParts(minimum)
	for len(vParts) < len(mParts) {
		vParts = append(vParts, 0)
	}
	for len(mParts) < len(vParts) {
		mParts = append(mParts, 0)
	}
	for i := 0; i < len(vParts); i++ {
		if vParts[i] > mParts[i] {
			return true
		}
		if vParts[i] < mParts[i] {
			return false
		}
	}
	return true
}

// numericParts splits the release portion of a version into integers;
// anything after a pre-release dash is ignored.
func numericParts(version string) []int {
	if idx := strings.IndexByte(version, '-'); idx >= 0 {
		version = version[:idx]
	}
	var parts []int
	current := strings.Builder{}
	for _, r := range version {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			val, _ := strconv.Atoi(current.String())
			parts = append(parts, val)
			current.Reset()
		}
	}
	if current.Len() > 0 {
		val, _ := strconv.Atoi(current.String())
		parts = append(parts, val)
	}
	return parts
}
