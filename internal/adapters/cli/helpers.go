package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/imperium/internal/infrastructure/config"
)

// resolveActor picks the acting player.
// Priority: --actor flag > default actor from the user config file
func resolveActor() (string, error) {
	handler, err := config.NewUserConfigHandler()
	if err != nil {
		return "", fmt.Errorf("no actor specified and failed to load user config: %w", err)
	}
	return resolveActorWith(actorFlag, handler)
}

func resolveActorWith(flagValue string, handler *config.UserConfigHandler) (string, error) {
	if actor := strings.TrimSpace(flagValue); actor != "" {
		return actor, nil
	}

	userCfg, err := handler.Load()
	if err != nil {
		return "", fmt.Errorf("no actor specified and failed to load user config: %w", err)
	}
	if userCfg.DefaultActor != "" {
		return userCfg.DefaultActor, nil
	}

	return "", fmt.Errorf("no actor specified: use --actor, or set a default with 'imperium config set-actor'")
}

// formatCredits renders a signed credit amount with an explicit sign
func formatCredits(amount int64) string {
	if amount > 0 {
		return fmt.Sprintf("+%d", amount)
	}
	return fmt.Sprintf("%d", amount)
}

// maskPassword hides the password of a database URL
func maskPassword(url string) string {
	schemeEnd := strings.Index(url, "://")
	at := strings.LastIndex(url, "@")
	if schemeEnd < 0 || at < 0 || at < schemeEnd {
		return url
	}
	credentials := url[schemeEnd+3 : at]
	colon := strings.Index(credentials, ":")
	if colon < 0 {
		return url
	}
	return url[:schemeEnd+3] + credentials[:colon] + ":****" + url[at:]
}
