package state

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paintersrp/an-kanban/internal/feed"
)

// StatusLine is the shared one-line summary shown under the board.
type StatusLine struct {
	mu   sync.RWMutex
	line string
}

func (s *StatusLine) Set(line string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.line = line
	s.mu.Unlock()
}

func (s *StatusLine) Get() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.line
}

// FeedStatsMsg notifies subscribers that the status line was refreshed from
// the feed statistics.
type FeedStatsMsg struct {
	Line string
}

// StatsSource exposes feed statistics. *feed.Feed satisfies it.
type StatsSource interface {
	Stats() feed.Stats
}

// StatusHeartbeatCmd reads the feed statistics, updates the shared status
// line and returns a message consumers use to rerender.
func (s *State) StatusHeartbeatCmd() tea.Cmd {
	if s == nil {
		return nil
	}

	return func() tea.Msg {
		var src StatsSource
		if s.Feed != nil {
			src = s.Feed
		}
		line := formatFeedStatus(src)
		if s.Status != nil {
			s.Status.Set(line)
		}
		return FeedStatsMsg{Line: line}
	}
}

func formatFeedStatus(src StatsSource) string {
	if src == nil {
		return ""
	}

	stats := src.Stats()
	parts := []string{fmt.Sprintf("Cards: %d", stats.Entries)}
	if stats.Cached > 0 {
		parts = append(parts, fmt.Sprintf("cached %d", stats.Cached))
	}
	if !stats.LastScan.IsZero() {
		parts = append(parts, fmt.Sprintf("scanned %s", formatScanTime(stats.LastScan)))
	}

	return strings.Join(parts, " · ")
}

func formatScanTime(t time.Time) string {
	return t.Local().Format("15:04")
}
