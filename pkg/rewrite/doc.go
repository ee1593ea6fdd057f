/*
Package rewrite holds the rule model and the small scanner rules are written with.

	+---------+     +---------+     +---------+
	| Rule 1  | --> | Rule 2  | --> | Rule N  |
	| Done?   |     | Done?   |     | Done?   |
	| Apply   |     | Apply   |     | Apply   |
	+---------+     +---------+     +---------+

🎯 Purpose:
  - Rule is a pure function over one document plus an explicit precondition
  - Chain threads the text through an ordered rule list
  - The scanner finds structural regions (balanced elements, brace blocks,
    css rules, attributes) by counting nesting depth instead of regex

⚡ Guarantees:
  - A rule whose Done holds is never applied, so re-running a chain is a no-op
  - A rule that leaves the text alone records nothing
  - A panicking rule aborts the chain for that document only and the
    original text is returned with an error wrapping ErrRulePanic

The scanner assumes reasonably well formed markup. Unclosed elements and
unbalanced braces are ignored rather than guessed at.
*/
package rewrite
