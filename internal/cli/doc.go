// Package cli implements the command-line interface for bracket-extract.
//
// The root command parses one category of a results PDF, writes the JSON
// result and prints a text or JSON summary. The inspect subcommand dumps what
// the PDF layer sees on each page, and fetch downloads result PDFs from a
// results web page. Any failure exits with status 1.
package cli
