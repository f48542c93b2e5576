// Package fixture provides the game Event value type and the list operations
// shared by the builder and the orchestrator: deduplication by (start, title),
// chronological ordering, the result cap, season-year selection and
// snapshot-based change detection between runs.
package fixture
