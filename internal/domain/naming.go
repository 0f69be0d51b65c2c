package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// conversationIDRe restricts conversation ids to characters that are safe in
// a file name.
var conversationIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidConversationID reports whether id can be used in log file names.
func ValidConversationID(id string) bool {
	return conversationIDRe.MatchString(id)
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "relay.log")
}

// ConversationLogPath returns the path to a conversation's log file.
func ConversationLogPath(dataDir, conversationID string) string {
	return filepath.Join(dataDir, "logs", fmt.Sprintf("chat-%s.log", conversationID))
}

// DatabasePath returns the path to the sqlite database file.
func DatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "relay.db")
}
