package channel

import (
	"fmt"

	"github.com/unclebandit/donorlink-backend/internal/config"
)

// NewPhoneNormalizer builds the normalizer from outreach settings.
func NewPhoneNormalizer(cfg config.Outreach) PhoneNormalizer {
	return PhoneNormalizer{CountryCode: cfg.CountryCode, NationalDigits: cfg.NationalDigits}
}

// New returns the adapter for the configured strategy.
func New(cfg *config.Config, opener Opener) (Adapter, error) {
	switch cfg.Outreach.Strategy {
	case config.StrategyDeepLink:
		return NewDeepLink(cfg.WhatsApp.DeepLinkBase, opener), nil
	case config.StrategyAPI:
		return NewWhatsAppClient(WhatsAppOptions{
			BaseURL:      cfg.WhatsApp.APIBase,
			TemplateName: cfg.WhatsApp.TemplateName,
			LanguageCode: cfg.WhatsApp.LanguageCode,
			Timeout:      cfg.WhatsApp.HTTPTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown outreach strategy %q", cfg.Outreach.Strategy)
	}
}
