package crawl

import "fmt"

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		// Too short for "..." prefix, just return dots
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProgress renders a progress event as a single status line, with
// URLs truncated to urlWidth.
func FormatProgress(e ProgressEvent, urlWidth int) string {
	switch e.Type {
	case ProgressStarted:
		return fmt.Sprintf("%s: %d links", e.Source, e.Total)
	case ProgressCompleted:
		return fmt.Sprintf("[%d/%d] ok   %s", e.Completed, e.Total, TruncateURL(e.URL, urlWidth))
	case ProgressSkipped:
		return fmt.Sprintf("[%d/%d] skip %s", e.Completed, e.Total, TruncateURL(e.URL, urlWidth))
	case ProgressFailed:
		return fmt.Sprintf("[%d/%d] fail %s: %v", e.Completed, e.Total, TruncateURL(e.URL, urlWidth), e.Error)
	case ProgressFinished:
		return fmt.Sprintf("%s: done", e.Source)
	default:
		return ""
	}
}
