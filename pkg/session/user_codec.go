package session

import (
	"encoding/json"

	"github.com/vitalpath/authkit/pkg/auth"
)

// encodeUser serializes the user snapshot for the key-value store.
func encodeUser(user *auth.User) string {
	data, err := json.Marshal(user)
	if err != nil {
		return ""
	}
	return string(data)
}

// decodeUser parses a persisted snapshot; a corrupt one is treated as
// absent rather than failing the bootstrap.
func decodeUser(snapshot string) *auth.User {
	if snapshot == "" {
		return nil
	}
	var user auth.User
	if err := json.Unmarshal([]byte(snapshot), &user); err != nil {
		return nil
	}
	return &user
}
