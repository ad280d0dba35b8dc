package contacts

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL builds the default avatar for a new account from its email.
// The hash input is the trimmed, lowercased address, as Gravatar requires.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", md5.Sum([]byte(normalized)))
}
