package mcpserver

// SummaryFormatContract describes the summary document layout that the
// metadata extractor understands. Agents filling in a record should follow it.
const SummaryFormatContract = `# Memory Summary Format

Every record has two documents: ` + "`summary.md`" + ` and ` + "`full-log.md`" + `.
Only the summary is parsed; the full log is searched as plain text.

## Recognized labels

| Field    | English label      | Chinese label      |
|----------|--------------------|--------------------|
| Topic    | ` + "`## Topic`" + ` heading, value on the next line | ` + "`## 主题`" + ` |
| Keywords | ` + "`**Keywords**: a, b, c`" + ` | ` + "`**关键词**：a，b，c`" + ` |
| Time     | ` + "`**Time**: 2026-01-11 14:30:00`" + ` | ` + "`**时间**：...`" + ` |

English labels are tried first. A missing topic shows as "Unknown Topic";
missing keywords or time show as empty cells.

## Rules

1. Keywords are separated by ASCII or full-width commas.
2. Leave no template markers such as ` + "`[keyword1]`" + `; they are ignored.
3. Keep the topic on the line directly under the heading.
4. Do not edit ` + "`INDEX.md`" + `; it is regenerated from the active records.

## Example

` + "```" + `markdown
# Memory Summary

## Topic
API Design

**Keywords**: rest, pagination, errors
**Time**: 2026-01-11 14:30:00

## Key Points
- Cursor pagination for list endpoints
` + "```" + `
`
