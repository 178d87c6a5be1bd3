// Package storage persists parsed brackets.
//
// Every successful parse produces one JSON document named after its category
// (tournament_<category>.json, spaces and slashes replaced by underscores).
// Missing player and match values are written as null. Files are replaced
// atomically so readers never see a half-written result.
//
// A PostgresSink can additionally mirror results into the tournaments,
// bracket_players and bracket_matches tables.
package storage
