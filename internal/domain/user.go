package domain

// User is the identity attached to a request after resolution. Password never
// leaves the auth package; records handed to callers have it stripped.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"user"`
	Fullname string `json:"fullname"`
	Email    string `json:"email,omitempty"`
	// Provider is the identity-provider label the record was created under.
	// Empty for local and anonymous users.
	Provider string `json:"-"`
}

// AccessRequest describes one corpus access request to be mailed to the
// configured administrators.
type AccessRequest struct {
	CorpusID string
	UserID   int64
	Username string
	Email    string
	Message  string
}
