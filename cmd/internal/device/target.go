package device

import "errors"

// Chat id suffixes of the underlying protocol.
const (
	groupSuffix   = "@g.us"
	contactSuffix = "@c.us"
)

var errNoTarget = errors.New("no send target: need chatId or number")

// ResolveTarget maps request fields to a protocol chat id:
// a group flag suffixes the chat id with the group domain, a bare chat id is
// used verbatim, otherwise the phone number gets the direct-contact domain.
func ResolveTarget(number, chatID string, isGroup bool) (string, error) {
	switch {
	case isGroup && chatID != "":
		return chatID + groupSuffix, nil
	case chatID != "":
		return chatID, nil
	case number != "":
		return number + contactSuffix, nil
	}
	return "", errNoTarget
}
