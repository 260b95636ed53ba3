// Package report renders extraction results for output.
//
// Formatter supports four formats:
//   - json: indented JSON, the same document the storage layer writes
//   - text: human-readable terminal output
//   - markdown: GitHub-flavored markdown built with nao1215/markdown,
//     including a mermaid pie chart of the link categories
//   - csv: one row per link with the header "Type,Text,URL"
//
// Format names are matched case-insensitively. An unsupported name yields
// a model.ResultFormattingError.
package report
