package navigation

import (
	"regexp"
	"strings"

	"github.com/covenantlabs/guidegraph/internal/core/model"
)

var (
	// "2.1  Income Requirements ............ 14" with the section number
	// and page both optional.
	tocEntryRe  = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*|[A-Z](?:\.\d+)+)?\.?\s*([A-Za-z].*?)\s*\.{3,}\s*(\d+)?\s*$`)
	tocHeaderRe = regexp.MustCompile(`(?i)^\s*(?:table\s+of\s+)?contents\s*$`)
)

// extractTOC looks for a contiguous dotted-leader block near the top of the
// document. It returns the parsed table plus the inclusive line range the
// block occupies, so the caller can keep those lines out of the heading
// scan. A nil table means no block with enough qualifying lines was found;
// the range is then (-1, -1).
func extractTOC(lines []string, minEntries, scanLimit int) (*model.TableOfContents, int, int) {
	limit := len(lines)
	if scanLimit > 0 && scanLimit < limit {
		limit = scanLimit
	}

	bestStart, bestEnd := -1, -1
	var bestEntries []model.TOCEntry

	i := 0
	for i < limit {
		if !dotLeaderRe.MatchString(lines[i]) {
			i++
			continue
		}

		// Grow the run; blank lines between entries are tolerated but
		// two consecutive lines of ordinary text end the block.
		start, end := i, i
		misses := 0
		var entries []model.TOCEntry
		j := i
		for ; j < limit; j++ {
			if dotLeaderRe.MatchString(lines[j]) {
				if e, ok := parseTOCLine(lines[j]); ok {
					entries = append(entries, e)
				}
				end = j
				misses = 0
				continue
			}
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			misses++
			if misses >= 2 {
				break
			}
		}

		if len(entries) >= minEntries && len(entries) > len(bestEntries) {
			bestStart, bestEnd, bestEntries = start, end, entries
		}
		i = j + 1
	}

	if bestEntries == nil {
		return nil, -1, -1
	}

	// Fold a "Table of Contents" caption sitting just above the block
	// into its range so the caption never reads as an ALL-CAPS chapter.
	for k := bestStart - 1; k >= 0 && k >= bestStart-3; k-- {
		t := strings.TrimSpace(lines[k])
		if t == "" {
			continue
		}
		if tocHeaderRe.MatchString(t) {
			bestStart = k
		}
		break
	}

	qualified := 0
	for _, e := range bestEntries {
		if e.SectionNumber != "" && e.PageNumber > 0 {
			qualified++
		}
	}
	confidence := 0.5 + 0.5*float64(qualified)/float64(len(bestEntries))

	return &model.TableOfContents{
		Entries:          bestEntries,
		ConfidenceScore:  confidence,
		ExtractionMethod: "dotted_leader",
	}, bestStart, bestEnd
}

func parseTOCLine(line string) (model.TOCEntry, bool) {
	m := tocEntryRe.FindStringSubmatch(strings.TrimRight(line, " \t\r"))
	if m == nil {
		return model.TOCEntry{}, false
	}
	num, title, page := m[1], strings.TrimSpace(m[2]), m[3]
	if title == "" {
		return model.TOCEntry{}, false
	}
	entry := model.TOCEntry{
		Title:         title,
		SectionNumber: num,
	}
	if num != "" {
		entry.Level = levelForSegments(strings.Count(num, ".") + 1)
	} else {
		entry.Level = model.LevelChapter
	}
	if page != "" {
		n := 0
		for _, r := range page {
			n = n*10 + int(r-'0')
		}
		entry.PageNumber = n
	}
	return entry, true
}
