// Package rule scores configured rules against clipboard text and ranks
// them into suggestions.
//
// A rule's match predicate is made of independent optional clauses:
// content types, application name substrings, a regular expression, and
// a CEL expression. Every clause that is present must be satisfied.
package rule
