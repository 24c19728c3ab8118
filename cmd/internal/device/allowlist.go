package device

// methodAllowList maps permitted execute names (aliases included) to the
// actual client operation. Anything absent here is rejected before the client
// is touched.
var methodAllowList = map[string]string{
	// Basic user/contact info
	"isRegisteredUser": "isRegisteredUser",
	"checkRegistered":  "isRegisteredUser",
	"getNumberId":      "getNumberId",
	"getUserNumberId":  "getNumberId",

	// Chat operations
	"muteChat":          "muteChat",
	"unmuteChat":        "unmuteChat",
	"archiveChat":       "archiveChat",
	"unarchiveChat":     "unarchiveChat",
	"pinChat":           "pinChat",
	"unpinChat":         "unpinChat",
	"markChatUnread":    "markChatUnread",
	"getChatById":       "getChatById",
	"getChats":          "getChats",
	"getChatLabels":     "getChatLabels",
	"addOrRemoveLabels": "addOrRemoveLabels",
	"getChatsByLabelId": "getChatsByLabelId",

	// Contact operations
	"getContactById":        "getContactById",
	"getContacts":           "getContacts",
	"getBlockedContacts":    "getBlockedContacts",
	"getContactDeviceCount": "getContactDeviceCount",
	"getProfilePicUrl":      "getProfilePicUrl",
	"getCommonGroups":       "getCommonGroups",

	// Group operations
	"acceptInvite":                   "acceptInvite",
	"acceptGroupV4Invite":            "acceptGroupV4Invite",
	"getInviteInfo":                  "getInviteInfo",
	"createGroup":                    "createGroup",
	"getGroupMembershipRequests":     "getGroupMembershipRequests",
	"approveGroupMembershipRequests": "approveGroupMembershipRequests",
	"rejectGroupMembershipRequests":  "rejectGroupMembershipRequests",

	// Messaging
	"sendMessage":             "sendMessage",
	"getMessageById":          "getMessageById",
	"searchMessages":          "searchMessages",
	"sendPresenceAvailable":   "sendPresenceAvailable",
	"sendPresenceUnavailable": "sendPresenceUnavailable",
	"sendSeen":                "sendSeen",

	// User profile/status
	"setStatus":            "setStatus",
	"setDisplayName":       "setDisplayName",
	"setProfilePicture":    "setProfilePicture",
	"deleteProfilePicture": "deleteProfilePicture",

	// Settings
	"setAutoDownloadAudio":     "setAutoDownloadAudio",
	"setAutoDownloadDocuments": "setAutoDownloadDocuments",
	"setAutoDownloadPhotos":    "setAutoDownloadPhotos",
	"setAutoDownloadVideos":    "setAutoDownloadVideos",

	// Connection & session
	"getState":           "getState",
	"getWWebVersion":     "getWWebVersion",
	"resetState":         "resetState",
	"requestPairingCode": "requestPairingCode",

	// Extra utilities
	"getCountryCode":     "getCountryCode",
	"getFormattedNumber": "getFormattedNumber",
}

// resolveMethod returns the actual operation name for an allow-listed method.
func resolveMethod(name string) (string, bool) {
	actual, ok := methodAllowList[name]
	return actual, ok
}
