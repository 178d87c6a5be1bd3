// Package fetch downloads tournament result PDFs.
//
// A URL ending in .pdf is downloaded directly. Any other URL is treated as a
// results page: it is parsed with goquery and every linked PDF is downloaded
// into the output directory. Bodies that do not start with %PDF- are rejected.
package fetch
