package user

// User is one account record, keyed by username.
// Password holds the bcrypt hash of the credential, never the plaintext.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayname"`
	Password    string `json:"password"`
	Admin       bool   `json:"admin"`
}
