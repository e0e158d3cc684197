package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"classroom-tracker/internal/catalog"
	"classroom-tracker/internal/config"
	"classroom-tracker/internal/constants"
)

// Announcer posts awarded badges to an optional classroom display webhook.
// Announcements are fire-and-forget: failures are logged, never propagated.
type Announcer struct {
	url    string
	client *fasthttp.Client
	logger zerolog.Logger
}

type announcement struct {
	Subject   string `json:"subject"`
	BadgeID   string `json:"badge_id"`
	BadgeName string `json:"badge_name"`
	Rarity    string `json:"rarity"`
	Bonus     int    `json:"bonus"`
	AwardedAt string `json:"awarded_at"`
}

func NewAnnouncer(cfg *config.Config, logger zerolog.Logger) *Announcer {
	return &Announcer{
		url: cfg.AnnounceURL,
		client: &fasthttp.Client{
			MaxConnsPerHost: 10,
			ReadTimeout:     constants.AnnounceTimeout,
			WriteTimeout:    constants.AnnounceTimeout,
		},
		logger: logger,
	}
}

// Enabled reports whether a webhook URL is configured.
func (a *Announcer) Enabled() bool {
	return a.url != ""
}

// Announce posts one badge award. No-op when disabled.
func (a *Announcer) Announce(subject string, badge catalog.Badge, at time.Time) error {
	if !a.Enabled() {
		return nil
	}

	body, err := json.Marshal(announcement{
		Subject:   subject,
		BadgeID:   string(badge.ID),
		BadgeName: badge.Name,
		Rarity:    string(badge.Rarity),
		Bonus:     badge.Bonus,
		AwardedAt: at.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode announcement: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(a.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := a.client.DoTimeout(req, resp, constants.AnnounceTimeout); err != nil {
		return fmt.Errorf("failed to post announcement: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("announcement rejected with status %d", resp.StatusCode())
	}

	a.logger.Debug().
		Str("subject", subject).
		Str("badge", string(badge.ID)).
		Msg("badge announced")
	return nil
}
