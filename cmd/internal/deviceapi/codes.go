package deviceapi

// Application-level status codes carried inside every JSON body, alongside
// the HTTP status. The dual convention is an external compatibility contract:
// the numbers below must not change.
const (
	codeOK           = 200 // operation succeeded
	codeChallenge    = 201 // credential challenge issued
	codeDisconnected = 203 // device disconnected
	codeAccepted     = 204 // accepted; initialization started / message taken
	codeNotFound     = 322 // accepted but entity absent
	codeMissingField = 401 // required field missing
	codeNotPermitted = 403 // method outside the allow-list
	codeFailure      = 500 // execution failed
)
