// Package report renders employee rosters.
//
// Writers share one interface and can be combined with a MultiWriter:
//   - ExcelWriter: the xlsx workbook with employee, summary and
//     instruction sheets
//   - MarkdownWriter: a Markdown summary with a confidence pie chart
//   - JSONWriter: the roster as JSON, readable again as a record file
//   - TableWriter: a terminal table
//
// WriteFile picks the writer from the file extension.
package report
