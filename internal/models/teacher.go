package models

// Teacher is the staff roster record. Username/password pairs feed the
// credential index rebuilt on every resync.
type Teacher struct {
	RecordMeta
	Title              string `json:"title"`
	RegistrationNumber string `json:"registrationNumber"`
	Subject            string `json:"subject"`
	Role               string `json:"role"`
	Username           string `json:"username"`
	Password           string `json:"password"`
}
