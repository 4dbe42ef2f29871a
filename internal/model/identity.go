package model

// Identity is the authenticated user as the identity provider reports it.
// Key is the stable provider-issued reference ("github:<numeric id>") and is
// the only field reservations are attributed by; DisplayName is a snapshot
// that may change between logins without breaking continuity.
type Identity struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}
