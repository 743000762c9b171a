// Package match decides whether a source member corresponds to a target member.
//
// Key pieces:
//   - NormalizeIdent, Splitter: identifier normalization and tokenization
//   - Rule, RuleSet: pluggable matching rules grouped by category
//   - Checker: type compatibility levels over reflect types
//   - RankCandidates, Suggest: Levenshtein based hints for unmatched members
package match
