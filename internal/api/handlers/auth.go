package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/service/linkedin"
)

// Authenticator drives the LinkedIn OAuth authorization-code flow.
type Authenticator interface {
	LoginURL(ctx context.Context) (string, error)
	HandleCallback(ctx context.Context, code, state string) (*linkedin.StoredToken, error)
}

// AuthHandler handles LinkedIn account connection requests
type AuthHandler struct {
	Auth   Authenticator
	Tokens TokenSource
	Logger logging.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Authenticator, tokens TokenSource, log logging.Logger) *AuthHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &AuthHandler{
		Auth:   auth,
		Tokens: tokens,
		Logger: log,
	}
}

// @Summary Start the LinkedIn login flow
// @Description Redirects to the LinkedIn authorization page with a fresh state parameter
// @Tags auth
// @Produce json
// @Success 302 {string} string "Redirect to LinkedIn"
// @Failure 500 {object} handlers.ErrorResponse "Could not start the login flow"
// @Router /auth/linkedin/login [get]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	url, err := h.Auth.LoginURL(c.Context())
	if err != nil {
		h.Logger.Error("Failed to start the LinkedIn login flow", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to start the LinkedIn login flow",
		})
	}
	return c.Redirect(url, fiber.StatusFound)
}

// @Summary Complete the LinkedIn login flow
// @Description Exchanges the authorization code for an access token and stores the credential set
// @Tags auth
// @Produce json
// @Param code query string false "Authorization code from LinkedIn"
// @Param state query string false "State parameter issued at login"
// @Param error query string false "Error code when the user denied access"
// @Success 200 {object} handlers.SuccessResponse "Account connected"
// @Failure 400 {object} handlers.ErrorResponse "Denied, missing parameters, or unknown state"
// @Failure 502 {object} handlers.ErrorResponse "Token exchange failed"
// @Router /auth/linkedin/callback [get]
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if errCode := c.Query("error"); errCode != "" {
		msg := "LinkedIn denied the authorization: " + errCode
		if desc := c.Query("error_description"); desc != "" {
			msg += " (" + desc + ")"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   msg,
		})
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Missing code or state parameter",
		})
	}

	token, err := h.Auth.HandleCallback(c.Context(), code, state)
	if err != nil {
		if errors.Is(err, linkedin.ErrInvalidState) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Login state is unknown or expired, restart the login flow",
			})
		}
		h.Logger.Error("LinkedIn callback failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to complete the LinkedIn login",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "LinkedIn account connected",
		"data": fiber.Map{
			"name":       token.Name,
			"person_urn": token.PersonURN,
			"expires_at": token.ExpiresAt,
		},
	})
}

// @Summary Report the LinkedIn connection status
// @Description Returns whether a LinkedIn account is connected and which member it belongs to
// @Tags auth
// @Produce json
// @Success 200 {object} handlers.SuccessResponse "Connection status"
// @Failure 500 {object} handlers.ErrorResponse "Credential lookup failed"
// @Router /auth/linkedin/status [get]
func (h *AuthHandler) Status(c *fiber.Ctx) error {
	token, err := h.Tokens.Token(c.Context())
	if err != nil {
		if errors.Is(err, linkedin.ErrNoToken) {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    fiber.Map{"connected": false},
			})
		}
		h.Logger.Error("Failed to load LinkedIn credentials", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load LinkedIn credentials",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"connected":  !token.Expired(),
			"name":       token.Name,
			"person_urn": token.PersonURN,
			"expires_at": token.ExpiresAt,
		},
	})
}
