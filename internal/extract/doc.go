// Package extract turns one category page of a results PDF into a bracket.
//
// The stages run in order:
//
//   - LocatePage finds the first page whose normalized text names the category.
//   - WordLines (or TextLines when no coordinates exist) turns the page into lines.
//   - CandidateLines keeps the roster lines following the header.
//   - ExtractPlayer parses each roster line into a bracket.Player.
//   - BuildFirstRound pairs draw positions; DetectScores and AssociateScores
//     attach scores by position.
//   - ConfirmPoints and BindWinner read the standings.
//
// Parser wires the stages together. Recognition misses are never errors: a
// line that does not parse is logged and skipped, and a score or winner that
// cannot be placed unambiguously stays unresolved.
package extract
