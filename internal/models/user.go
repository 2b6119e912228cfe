package models

// User is the opaque session identity delivered by the identity provider.
// A nil *User means local-only mode.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// Profile is the singular per-user document written once at account creation
// and upserted on first social sign-in.
type Profile struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	CreatedAt   string `json:"createdAt"`
}
