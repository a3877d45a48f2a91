package models

// ClassLevels are the senior-high grade levels a class may belong to.
var ClassLevels = []string{"10", "11", "12"}

// Class describes one homeroom group.
type Class struct {
	RecordMeta
	Title string `json:"title"`
	Level string `json:"level"`
	Track string `json:"track"`
}
