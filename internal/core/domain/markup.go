package domain

// Sentinel tags carried through the plain-text pipeline stage. They mark
// subscript/superscript runs and the table region so downstream consumers
// (the grading prompt and the rich-text exporter) can tell chemical-formula
// markup and table cells apart from body text. Not part of any real markup
// standard.
const (
	SubscriptOpen    = "[sub]"
	SubscriptClose   = "[/sub]"
	SuperscriptOpen  = "[sup]"
	SuperscriptClose = "[/sup]"

	TableSentinel = "--- DETECTED TABLES ---"
)
