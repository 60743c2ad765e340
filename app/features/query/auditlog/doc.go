// Package auditlog implements the audit trail query of one catalog item.
//
// Entries are returned newest first. The result additionally counts entries per
// event type, which the staff view uses to spot items with many demand signals.
package auditlog
