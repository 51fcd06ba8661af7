// Package wiki decides where a link leads. It resolves link targets against
// the open document, keeps every navigation inside the wiki root, and gates
// navigation on unsaved changes.
package wiki
