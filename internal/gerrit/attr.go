package gerrit

// Account identifies a Gerrit user as it appears in stream-events payloads.
type Account struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Change holds the change-level attributes shared by change-scoped events.
type Change struct {
	Project string  `json:"project"`
	Branch  string  `json:"branch"`
	ID      string  `json:"id"`
	Number  string  `json:"number"`
	Subject string  `json:"subject"`
	Owner   Account `json:"owner"`
	URL     string  `json:"url"`
}

// PatchSet identifies one revision of a change.
type PatchSet struct {
	Number   string  `json:"number"`
	Revision string  `json:"revision"`
	Ref      string  `json:"ref"`
	Uploader Account `json:"uploader"`
}

// Approval is a single review vote attached to a comment-added event.
type Approval struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RefUpdate describes a direct ref change (push outside review).
type RefUpdate struct {
	Project string `json:"project"`
	RefName string `json:"refName"`
	OldRev  string `json:"oldRev"`
	NewRev  string `json:"newRev"`
}
