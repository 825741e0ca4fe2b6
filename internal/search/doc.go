// Package search ranks scanned assets against free-text queries.
//
// Every asset gets a precomputed record of lowercase token groups
// (filename, path, namespace, source) plus compacted alphanumeric forms.
// Query tokens are matched per group with descending weights for exact,
// prefix and substring hits; tokens that miss everywhere fall back to a
// tightly gated edit-distance match against filename and path tokens.
// Whole-query bonuses reward compact stem matches and key substrings.
//
// Empty queries bypass scoring and return assets in natural filename
// order, so step1 sorts before step2 and step10.
package search
