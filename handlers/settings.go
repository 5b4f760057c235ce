package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"path/filepath"
	"strings"

	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/services"
	"juris_desk_go/services/gcalendar"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"
)

const (
	// MaxLogoSize caps logo uploads at 2 MB
	MaxLogoSize = 2 * 1024 * 1024
	// oauthStateCookie holds the anti-forgery state during the consent flow
	oauthStateCookie = "juris_desk_oauth_state"
)

// GetSettingsHandler returns the user's practice settings
func GetSettingsHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	settings, err := services.GetOrCreateSettings(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load settings")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"settings":           settings,
		"calendar_connected": settings.HasCalendarConnection(),
	})
}

// SaveSettingsHandler updates the user's practice settings
func SaveSettingsHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var update services.SettingsUpdate
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	settings, err := services.SaveSettings(db.DB, user.ID, update)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save settings")
	}

	return c.JSON(http.StatusOK, settings)
}

// UploadLogoHandler stores the user's letterhead logo. The logo belongs to
// this user only; it is never served for anyone else's documents.
func UploadLogoHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	file, err := c.FormFile("logo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Logo file is required")
	}
	if file.Size > MaxLogoSize {
		return echo.NewHTTPError(http.StatusBadRequest, "Logo must be smaller than 2 MB")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return echo.NewHTTPError(http.StatusBadRequest, "Logo must be a PNG or JPEG image")
	}

	settings, err := services.GetOrCreateSettings(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load settings")
	}

	// Replace any previous logo
	if settings.LogoKey != "" {
		if err := services.Storage.Delete(c.Request().Context(), settings.LogoKey); err != nil {
			c.Logger().Errorf("Failed to delete previous logo: %v", err)
		}
	}

	key := services.GenerateLogoKey(user.ID, file.Filename)
	result, err := services.Storage.Upload(c.Request().Context(), file, key)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store logo")
	}

	settings.LogoKey = result.Key
	if err := db.DB.Save(settings).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save settings")
	}

	return c.JSON(http.StatusOK, map[string]string{"logo_key": result.Key})
}

// GetLogoHandler streams the current user's logo
func GetLogoHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	settings, err := services.GetOrCreateSettings(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load settings")
	}
	if settings.LogoKey == "" {
		return echo.NewHTTPError(http.StatusNotFound, "No logo uploaded")
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), settings.LogoKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Logo not found")
	}
	defer reader.Close()

	return c.Stream(http.StatusOK, contentType, reader)
}

// ConnectCalendarHandler starts the Google Calendar consent flow
func ConnectCalendarHandler(c echo.Context) error {
	cfg := GetConfig(c)
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Calendar integration is not configured")
	}

	state, err := generateOAuthState()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start calendar connection")
	}

	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	authURL := gcalendar.OAuthConfig(cfg).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return c.Redirect(http.StatusSeeOther, authURL)
}

// CalendarCallbackHandler completes the consent flow and stores the token
func CalendarCallbackHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	cfg := GetConfig(c)

	stateCookie, err := c.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != c.QueryParam("state") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid state parameter")
	}

	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing authorization code")
	}

	token, err := gcalendar.OAuthConfig(cfg).Exchange(c.Request().Context(), code)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to exchange authorization code")
	}

	if err := services.SaveCalendarToken(db.DB, user.ID, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store calendar connection")
	}

	return c.Redirect(http.StatusSeeOther, "/settings?calendar=connected")
}

// DisconnectCalendarHandler removes the stored calendar connection
func DisconnectCalendarHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	if err := services.DisconnectCalendar(db.DB, user.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to disconnect calendar")
	}

	return c.NoContent(http.StatusNoContent)
}

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
