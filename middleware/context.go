package middleware

// Context keys shared by the middleware chain and controllers.
const (
	CtxUser       = "user"        // models.User of the authenticated caller
	CtxUserPublic = "userPublic"  // JSON-safe view of the caller
	CtxMeeting    = "meetingObj"  // meeting loaded by the owner/manager checks
)
