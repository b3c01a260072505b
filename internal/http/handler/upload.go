package handler

import (
	"crypto/subtle"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"kerneltest/internal/http/middleware"
	"kerneltest/internal/http/view"
	"kerneltest/internal/ingest"
	"kerneltest/internal/metrics"
	"kerneltest/internal/service"
)

// CSRFContextKey is the Locals key the csrf middleware stores its token under.
const CSRFContextKey = "csrf"

// UploadDeps is what the upload handlers share.
type UploadDeps struct {
	Results service.ResultService
	Metrics *metrics.UploadMetrics
	Logger  *log.Logger
	// AutotestToken enables POST /upload/autotest when non-empty.
	AutotestToken string
}

func (d UploadDeps) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.StandardLogger()
}

// uploadedFile returns the multipart part for field, or nil when no file was sent.
func uploadedFile(c *fiber.Ctx) *multipart.FileHeader {
	fh, err := c.FormFile(ingest.FieldTestResult)
	if err != nil || fh == nil || fh.Filename == "" {
		return nil
	}
	return fh
}

func opener(fh *multipart.FileHeader) ingest.Opener {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

func (d UploadDeps) logOutcome(c *fiber.Ctx, entry ingest.EntryPoint, username string, out ingest.Outcome) {
	d.Metrics.Observe(entry, out.Kind)

	fields := log.Fields{
		"request_id": middleware.RequestIDFrom(c),
		"entry":      entry.String(),
		"username":   username,
		"outcome":    out.Kind.String(),
	}
	if out.Run != nil {
		fields["run_id"] = out.Run.ID
		fields["kernel"] = out.Run.KernelVersion
	}
	if out.Err != nil {
		fields["reason"] = out.Err.Error()
	}
	d.logger().WithFields(fields).Info("upload")
}

func (d UploadDeps) serverFault(c *fiber.Ctx, entry ingest.EntryPoint, err error) error {
	d.logger().WithFields(log.Fields{
		"request_id": middleware.RequestIDFrom(c),
		"entry":      entry.String(),
	}).WithError(err).Error("upload failed")
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// UploadForm renders the upload page for the logged-in user.
//
// @Summary Upload form
// @Tags upload
// @Produce html
// @Success 200 {string} string "HTML page"
// @Failure 302 {string} string "redirect to /login"
// @Router /upload/ [get]
func UploadForm(d UploadDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, user := loggedIn(c)
		if sess == nil {
			return redirectToLogin(c, uploadPath)
		}

		flashes := popFlashes(sess)
		if err := sess.Save(); err != nil {
			return err
		}
		token, _ := c.Locals(CSRFContextKey).(string)
		return renderHTML(c, fiber.StatusOK, view.UploadPage(view.UploadData{
			User:      user,
			Flashes:   flashes,
			CSRFToken: token,
		}))
	}
}

// UploadInteractive handles the browser form. The submitter is the session user.
//
// @Summary Upload a test log from the browser
// @Tags upload
// @Accept multipart/form-data
// @Produce html
// @Param test_result formData file true "kernel test log"
// @Success 200 {string} string "HTML page with a flash"
// @Failure 302 {string} string "redirect to /login or back to /upload/"
// @Router /upload/ [post]
func UploadInteractive(d UploadDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, sessUser := loggedIn(c)
		user, err := ingest.ResolveIdentity(ingest.Interactive, sessUser, "")
		if err != nil || sess == nil {
			return redirectToLogin(c, uploadPath)
		}

		fh := uploadedFile(c)
		token, _ := c.Locals(CSRFContextKey).(string)

		var out ingest.Outcome
		if errs := ingest.ValidateForm(ingest.Interactive, ingest.Form{HasFile: fh != nil}); len(errs) > 0 {
			out = ingest.MissingFields(errs)
		} else {
			out, err = d.Results.Ingest(c.UserContext(), service.Submission{
				Entry:    ingest.Interactive,
				Username: user,
				Filename: fh.Filename,
				Open:     opener(fh),
			})
			if err != nil {
				return d.serverFault(c, ingest.Interactive, err)
			}
		}
		d.logOutcome(c, ingest.Interactive, user, out)

		reply, ok := pageReplies[out.Kind]
		if !ok {
			return fiber.ErrInternalServerError
		}
		if reply.redirect {
			if f := reply.flash(out); f != nil {
				pushFlash(sess, *f)
			}
			if err := sess.Save(); err != nil {
				return err
			}
			return c.Redirect(uploadPath, fiber.StatusFound)
		}

		flashes := popFlashes(sess)
		if f := reply.flash(out); f != nil {
			flashes = append(flashes, *f)
		}
		if err := sess.Save(); err != nil {
			return err
		}
		return renderHTML(c, fiber.StatusOK, view.UploadPage(view.UploadData{
			User:      user,
			Flashes:   flashes,
			Fields:    ingest.Messages(out.Fields),
			CSRFToken: token,
		}))
	}
}

// UploadAnonymous accepts a log on behalf of the declared username.
//
// @Summary Upload a test log
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param username formData string true "submitter"
// @Param test_result formData file true "kernel test log"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /upload/anonymous [post]
func UploadAnonymous(d UploadDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh := uploadedFile(c)
		declared := c.FormValue(ingest.FieldUsername)

		if errs := ingest.ValidateForm(ingest.AnonymousAPI, ingest.Form{HasFile: fh != nil, Username: declared}); len(errs) > 0 {
			out := ingest.MissingFields(errs)
			d.logOutcome(c, ingest.AnonymousAPI, declared, out)
			return replyJSON(c, out)
		}

		user, _ := ingest.ResolveIdentity(ingest.AnonymousAPI, "", declared)
		out, err := d.Results.Ingest(c.UserContext(), service.Submission{
			Entry:    ingest.AnonymousAPI,
			Username: user,
			Filename: fh.Filename,
			Open:     opener(fh),
		})
		if err != nil {
			return d.serverFault(c, ingest.AnonymousAPI, err)
		}
		d.logOutcome(c, ingest.AnonymousAPI, user, out)
		return replyJSON(c, out)
	}
}

// UploadAutotest is the token-protected path of the reserved account.
//
// @Summary Upload a test log as the reserved account
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param api_token formData string true "shared token"
// @Param test_result formData file true "kernel test log"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]string
// @Router /upload/autotest [post]
func UploadAutotest(d UploadDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d.AutotestToken == "" {
			return fiber.ErrNotFound
		}

		fh := uploadedFile(c)
		token := c.FormValue(ingest.FieldAPIToken)
		reserved := d.Results.Reserved()

		if errs := ingest.ValidateForm(ingest.Autotest, ingest.Form{HasFile: fh != nil, APIToken: token}); len(errs) > 0 {
			out := ingest.MissingFields(errs)
			d.logOutcome(c, ingest.Autotest, reserved, out)
			return replyJSON(c, out)
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(d.AutotestToken)) != 1 {
			d.logger().WithField("request_id", middleware.RequestIDFrom(c)).Warn("autotest upload with a bad token")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": MsgInvalidAPIToken})
		}

		out, err := d.Results.Ingest(c.UserContext(), service.Submission{
			Entry:    ingest.Autotest,
			Username: reserved,
			Filename: fh.Filename,
			Open:     opener(fh),
		})
		if err != nil {
			return d.serverFault(c, ingest.Autotest, err)
		}
		d.logOutcome(c, ingest.Autotest, reserved, out)
		return replyJSON(c, out)
	}
}
