package output

import (
	"fmt"
	"io"
	"os"
	"time"
)

// CI environment detection.

func IsCI() bool {
	return os.Getenv("CI") == "true"
}

func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

func IsGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// UseColor reports whether ANSI colors should be emitted: a terminal on
// stdout (or a CI log that renders ANSI) and NO_COLOR unset.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if IsGitLabCI() || IsGitHubActions() {
		return true
	}
	return isTerminal()
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Collapsible log section helpers. GitLab and GitHub Actions each have
// their own marker syntax; everywhere else these are no-ops.

func SectionStart(w io.Writer, id, name string) {
	switch {
	case IsGitLabCI():
		ts := time.Now().Unix()
		fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", ts, id, name)
	case IsGitHubActions():
		fmt.Fprintf(w, "::group::%s\n", name)
	}
}

func SectionEnd(w io.Writer, id string) {
	switch {
	case IsGitLabCI():
		ts := time.Now().Unix()
		fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", ts, id)
	case IsGitHubActions():
		fmt.Fprintln(w, "::endgroup::")
	}
}
