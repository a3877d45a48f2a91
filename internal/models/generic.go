package models

// Generic is the fallback variant for record types without a dedicated
// shape. It keeps decoding and validation total over unknown tags.
type Generic struct {
	RecordMeta
	Title   string `json:"title"`
	Content string `json:"content"`
}
