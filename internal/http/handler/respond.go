package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	g "maragu.dev/gomponents"

	"kerneltest/internal/http/view"
	"kerneltest/internal/ingest"
)

// Contract messages of the upload endpoints.
const (
	MsgUploadSuccessful = "Upload successful!"
	MsgInvalidInput     = "Invalid input file"
	MsgInvalidRequest   = "Invalid request"
	MsgCouldNotParse    = "Could not parse these results"
	MsgInvalidAPIToken  = "Invalid api_token provided"
)

// ReservedMessage is the rejection text for the reserved account name.
func ReservedMessage(reserved string) string {
	return fmt.Sprintf("The `%s` username is reserved, you are not allowed to use it", reserved)
}

// apiReply is how the JSON entry points answer one outcome kind.
type apiReply struct {
	status int
	body   func(ingest.Outcome) fiber.Map
}

var apiReplies = map[ingest.Kind]apiReply{
	ingest.Success: {
		status: fiber.StatusOK,
		body:   func(ingest.Outcome) fiber.Map { return fiber.Map{"message": MsgUploadSuccessful} },
	},
	ingest.ReservedUsername: {
		status: fiber.StatusUnauthorized,
		body:   func(o ingest.Outcome) fiber.Map { return fiber.Map{"error": ReservedMessage(o.Reserved)} },
	},
	ingest.InvalidMimeType: {
		status: fiber.StatusBadRequest,
		body:   func(ingest.Outcome) fiber.Map { return fiber.Map{"error": MsgInvalidInput} },
	},
	ingest.InvalidFile: {
		status: fiber.StatusBadRequest,
		body:   func(ingest.Outcome) fiber.Map { return fiber.Map{"error": MsgInvalidInput} },
	},
	ingest.MissingField: {
		status: fiber.StatusBadRequest,
		body: func(o ingest.Outcome) fiber.Map {
			return fiber.Map{"error": MsgInvalidRequest, "messages": ingest.Messages(o.Fields)}
		},
	},
}

func replyJSON(c *fiber.Ctx, out ingest.Outcome) error {
	r, ok := apiReplies[out.Kind]
	if !ok {
		return fiber.ErrInternalServerError
	}
	return c.Status(r.status).JSON(r.body(out))
}

// pageReply is how the interactive form answers one outcome kind. A redirect
// stores the flash for the next GET; otherwise the form is rendered in place.
type pageReply struct {
	redirect bool
	flash    func(ingest.Outcome) *view.Flash
}

var pageReplies = map[ingest.Kind]pageReply{
	ingest.Success: {
		flash: func(ingest.Outcome) *view.Flash {
			return &view.Flash{Category: view.FlashMessage, Message: MsgUploadSuccessful}
		},
	},
	ingest.ReservedUsername: {
		flash: func(o ingest.Outcome) *view.Flash {
			return &view.Flash{Category: view.FlashError, Message: ReservedMessage(o.Reserved)}
		},
	},
	// MIME and parse failures are indistinguishable to the browser user.
	ingest.InvalidMimeType: {
		redirect: true,
		flash: func(ingest.Outcome) *view.Flash {
			return &view.Flash{Category: view.FlashMessage, Message: MsgCouldNotParse}
		},
	},
	ingest.InvalidFile: {
		redirect: true,
		flash: func(ingest.Outcome) *view.Flash {
			return &view.Flash{Category: view.FlashMessage, Message: MsgCouldNotParse}
		},
	},
	// Field errors render next to the input.
	ingest.MissingField: {
		flash: func(ingest.Outcome) *view.Flash { return nil },
	},
}

func renderHTML(c *fiber.Ctx, status int, node g.Node) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Status(status)
	return node.Render(c)
}
