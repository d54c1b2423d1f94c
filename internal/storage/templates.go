package storage

import (
	"fmt"
	"time"
)

const summaryTemplate = `# Memory Summary

## Topic
[Topic]

**Keywords**: [keyword1], [keyword2], [keyword3]
**Time**: %s

## Key Points
- [Key point]

## Decisions
- [Decision]

## Follow-ups
- [Follow-up]
`

const fullLogTemplate = `# Full Log: %s

[Paste the full session transcript here]
`

func renderSummary(now time.Time) []byte {
	return []byte(fmt.Sprintf(summaryTemplate, now.Format("2006-01-02 15:04:05")))
}

func renderFullLog(id string) []byte {
	return []byte(fmt.Sprintf(fullLogTemplate, id))
}
