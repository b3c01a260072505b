package handler

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"kerneltest/internal/http/view"
	"kerneltest/internal/ingest"
)

const (
	sessionUserKey  = "user"
	sessionFlashKey = "flashes"
	uploadPath      = "/upload/"

	sessionLocalKey = "session"
	userLocalKey    = "user"
)

func sessionUser(sess *session.Session) string {
	user, _ := sess.Get(sessionUserKey).(string)
	return user
}

// Flashes are kept as a JSON string so any session storage can hold them.
func pushFlash(sess *session.Session, f view.Flash) {
	flashes := peekFlashes(sess)
	flashes = append(flashes, f)
	if b, err := json.Marshal(flashes); err == nil {
		sess.Set(sessionFlashKey, string(b))
	}
}

func peekFlashes(sess *session.Session) []view.Flash {
	raw, _ := sess.Get(sessionFlashKey).(string)
	if raw == "" {
		return nil
	}
	var flashes []view.Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}

func popFlashes(sess *session.Session) []view.Flash {
	flashes := peekFlashes(sess)
	sess.Delete(sessionFlashKey)
	return flashes
}

// RequireLogin loads the session and redirects to /login when it carries no
// user. The session and user are left in Locals for the next handler, which
// must Save the session last since Save releases it.
func RequireLogin(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		user, err := ingest.FromSession(sessionUser(sess))
		if err != nil {
			return redirectToLogin(c, c.Path())
		}
		c.Locals(sessionLocalKey, sess)
		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

func loggedIn(c *fiber.Ctx) (*session.Session, string) {
	sess, _ := c.Locals(sessionLocalKey).(*session.Session)
	user, _ := c.Locals(userLocalKey).(string)
	return sess, user
}

func redirectToLogin(c *fiber.Ctx, next string) error {
	return c.Redirect("/login?next="+url.QueryEscape(next), fiber.StatusFound)
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return uploadPath
	}
	return next
}

// Login establishes the session from the identity header set by the fronting
// login proxy, then redirects to ?next=.
func Login(store *session.Store, userHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := ingest.FromSession(c.Get(userHeader))
		if err != nil {
			return renderHTML(c, fiber.StatusUnauthorized, view.LoginRequiredPage(userHeader))
		}

		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		// New identity, new session ID.
		if err := sess.Regenerate(); err != nil {
			return err
		}
		sess.Set(sessionUserKey, user)
		if err := sess.Save(); err != nil {
			return err
		}
		return c.Redirect(safeNext(c.Query("next")), fiber.StatusFound)
	}
}

// Logout drops the session and goes back to the upload page.
func Logout(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		if err := sess.Destroy(); err != nil {
			return err
		}
		return c.Redirect(uploadPath, fiber.StatusFound)
	}
}
