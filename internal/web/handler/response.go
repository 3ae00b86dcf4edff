package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ErrInvalidBody is returned when a request body cannot be parsed.
var ErrInvalidBody = errors.New("invalid request body")

// Error writes the error envelope with the given status.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// BadRequest writes a 400 envelope.
func BadRequest(c *fiber.Ctx, err error) error {
	return Error(c, fiber.StatusBadRequest, err.Error())
}

// NotFound writes a 404 envelope.
func NotFound(c *fiber.Ctx, err error) error {
	return Error(c, fiber.StatusNotFound, err.Error())
}

// Conflict writes a 409 envelope.
func Conflict(c *fiber.Ctx, err error) error {
	return Error(c, fiber.StatusConflict, err.Error())
}

// Internal logs err and writes a 500 envelope with the cause appended to msg.
func Internal(c *fiber.Ctx, msg string, err error) error {
	log.Error().Err(err).Str("path", c.Path()).Msg(msg)

	return Error(c, fiber.StatusInternalServerError, msg+": "+err.Error())
}

// Parse decodes the request body into out and validates it. A failure has
// already been written to the client when the returned bool is false.
func Parse(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, BadRequest(c, ErrInvalidBody)
	}

	if err := Validator.Validate(out); err != nil {
		return false, BadRequest(c, err)
	}

	return true, nil
}

// QueryInt reads a positive integer query parameter, def when absent or invalid.
func QueryInt(c *fiber.Ctx, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}

	return v
}
