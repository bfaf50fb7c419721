package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/creassist/internal/models"
)

// ExportTranscript renders the session as plain text: one "{role}: {content}"
// entry per message, entries separated by a blank line. An empty or nil
// session yields an empty transcript. Transcripts are not meant to be re-imported.
func ExportTranscript(s *models.Session) string {
	if s == nil || len(s.Messages) == 0 {
		return ""
	}

	entries := make([]string, len(s.Messages))
	for i, msg := range s.Messages {
		entries[i] = fmt.Sprintf("%s: %s", msg.Role, msg.Content)
	}
	return strings.Join(entries, "\n\n")
}

// TranscriptFilename names the n-th export file of the given day. The first
// export keeps the plain date name; later ones get "-2", "-3" and so on.
func TranscriptFilename(t time.Time, n int) string {
	name := "cre-chat-export-" + t.Format("2006-01-02")
	if n > 1 {
		name += "-" + strconv.Itoa(n)
	}
	return name + ".txt"
}

// maxExportsPerDay bounds the search for a free transcript name.
const maxExportsPerDay = 1000

// createTranscriptFile creates the first unused transcript file in dir.
// Existing exports are never overwritten.
func createTranscriptFile(dir string, t time.Time) (*os.File, error) {
	for n := 1; n <= maxExportsPerDay; n++ {
		path := filepath.Join(dir, TranscriptFilename(t, n))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, fmt.Errorf("more than %d exports on %s", maxExportsPerDay, t.Format(time.DateOnly))
}

// RelativeDate formats t for the session list: "Today", "Yesterday",
// "N days ago" within a week, and the plain date beyond that.
func RelativeDate(t, now time.Time) string {
	y1, m1, d1 := t.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	day := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)

	days := int(today.Sub(day).Hours() / 24)
	if days < 0 {
		days = -days
	}
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days <= 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.In(now.Location()).Format("Jan 2, 2006")
	}
}
