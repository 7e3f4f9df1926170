// Package filter implements the rule-driven tree filter. It walks a decoded
// document, finds sub-objects whose tag matches a [RuleSet] entry and whose
// values satisfy the compiled [criteria.Criteria], deletes or mutates them,
// and propagates deletions upward.
//
// Cascading is deliberately narrow. A sequence element whose subtree caused
// a deletion is removed from the sequence. A parent learns about a deletion
// below it only when the child is a sequence that ended up empty, or when
// the child's attribute name is on the engine's cascade allow-list, in which
// case the attribute is deleted from the parent as well. Every other
// deletion stays local.
//
// An [Engine] is built once per configuration and shared; each call to
// [Engine.Run] creates a [Session] that is consumed by exactly one pass.
package filter
