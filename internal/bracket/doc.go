// Package bracket defines the single-elimination draw model produced by the extractor.
//
// TournamentData owns the players (keyed by draw number) and the match list of
// one parse run. Matches refer to players by draw number only, so fixing a
// player's fields never leaves a stale copy inside a match. Round-1 pairings come
// from FirstRoundPairs, which generalizes the fixed 16-draw table to any power of
// two while keeping the (1,2),(3,4),... order.
package bracket
