package handlers

import (
	"juris_desk_go/config"
	"juris_desk_go/services/ai"
	"juris_desk_go/services/gcalendar"

	"github.com/labstack/echo/v4"
)

// Context keys for collaborators injected by the server at startup
const (
	ContextKeyConfig    = "config"
	ContextKeyCalendar  = "calendar"
	ContextKeyAssistant = "assistant"
)

// InjectDependencies returns middleware that stores the config and external
// collaborators on the request context so handlers can reach them.
func InjectDependencies(cfg *config.Config, calendar gcalendar.Provider, assistant *ai.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyConfig, cfg)
			c.Set(ContextKeyCalendar, calendar)
			c.Set(ContextKeyAssistant, assistant)
			return next(c)
		}
	}
}

// GetConfig retrieves the application config from context
func GetConfig(c echo.Context) *config.Config {
	cfg, ok := c.Get(ContextKeyConfig).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// GetCalendarProvider retrieves the external calendar provider from context
func GetCalendarProvider(c echo.Context) gcalendar.Provider {
	provider, ok := c.Get(ContextKeyCalendar).(gcalendar.Provider)
	if !ok {
		return nil
	}
	return provider
}

// GetAssistant retrieves the AI assistant client from context
func GetAssistant(c echo.Context) *ai.Client {
	client, ok := c.Get(ContextKeyAssistant).(*ai.Client)
	if !ok {
		return nil
	}
	return client
}
