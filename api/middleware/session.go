package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapeui/session"
)

// SessionCookie is the cookie carrying the session id.
const SessionCookie = "scrapeui_session"

const sessionKey = "session"

// Session attaches the visitor's session to the request context, creating
// one (and setting the cookie) when the request carries no live session.
func Session(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		sess, created := store.GetOrCreate(id)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sess.ID, 0, "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session attached by Session.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
