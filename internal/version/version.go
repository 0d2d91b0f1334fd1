package version

import (
	"fmt"
	"log"
	"strings"

	"github.com/thushan/runstatus/theme"
)

var (
	Name        = "runstatus"
	ShortName   = "runstatus"
	Description = "Model run status viewer"
	Version     = "v0.0.1"
	Commit      = "none"
	Date        = "nowish"
	User        = "local"
)

const (
	GithubHomeText  = "github.com/thushan/runstatus"
	GithubHomeUri   = "https://github.com/thushan/runstatus"
	GithubLatestUri = "https://github.com/thushan/runstatus/releases/latest"
)

// UserAgent is sent on every outbound status service request
func UserAgent() string {
	return fmt.Sprintf("%s/%s", ShortName, Version)
}

func PrintVersionInfo(extendedInfo bool, vlog *log.Logger) {
	githubUri := theme.Hyperlink(GithubHomeUri, GithubHomeText)
	latestUri := theme.Hyperlink(GithubLatestUri, Version)

	var b strings.Builder

	b.WriteString(theme.ColourSplash("╭─ " + Name + " ─ " + Description + "\n"))
	b.WriteString(theme.ColourSplash("╰─ "))
	b.WriteString(theme.StyleUrl(githubUri))
	b.WriteString(" ")
	b.WriteString(theme.ColourVersion(latestUri))

	if extendedInfo {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(" Commit: %s\n", Commit))
		b.WriteString(fmt.Sprintf("  Built: %s\n", Date))
		b.WriteString(fmt.Sprintf("  Using: %s\n", User))
	}

	vlog.Println(b.String())
}
