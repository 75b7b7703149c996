package service

import (
	"context"
	"errors"
	"strings"

	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/channel"
	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/repository"
)

// Secret names holding the WhatsApp Cloud API credentials.
const (
	SecretWhatsAppToken         = "WHATSAPP_API_TOKEN"
	SecretWhatsAppPhoneNumberID = "WHATSAPP_PHONE_NUMBER_ID"
)

// SettingsResolver resolves the per-job settings for an operator. When no
// admin contact can be found it returns the partial settings together with a
// ConfigurationMissing error.
type SettingsResolver interface {
	Resolve(ctx context.Context, operatorID string) (OutreachSettings, error)
}

// StaticSettings always resolves to the same settings.
type StaticSettings OutreachSettings

func (s StaticSettings) Resolve(context.Context, string) (OutreachSettings, error) {
	if strings.TrimSpace(s.AdminContact) == "" {
		return OutreachSettings(s), appErrors.NewConfigurationMissing("admin WhatsApp contact")
	}
	return OutreachSettings(s), nil
}

// ProfileSettingsResolver looks the admin contact up in profiles and the API
// credentials up in the secrets table, falling back to static values.
type ProfileSettingsResolver struct {
	Profiles            repository.ProfileRepositoryInterface
	Secrets             repository.SecretRepositoryInterface
	FallbackContact     string
	FallbackCredentials channel.Credentials
}

func (r *ProfileSettingsResolver) Resolve(ctx context.Context, operatorID string) (OutreachSettings, error) {
	settings := OutreachSettings{Credentials: r.credentials(ctx)}

	contact, err := r.adminContact(ctx, operatorID)
	if err != nil {
		return settings, err
	}
	if contact == "" {
		return settings, appErrors.NewConfigurationMissing("admin WhatsApp contact")
	}
	settings.AdminContact = contact
	return settings, nil
}

// adminContact prefers the operator's own number when they are an admin,
// then any admin with a number, then the configured fallback.
func (r *ProfileSettingsResolver) adminContact(ctx context.Context, operatorID string) (string, error) {
	own, err := r.Profiles.GetByID(ctx, operatorID)
	if err != nil {
		return "", err
	}
	if own != nil && own.IsAdmin && own.WhatsAppNumber != nil && *own.WhatsAppNumber != "" {
		return *own.WhatsAppNumber, nil
	}

	admin, err := r.Profiles.FindAdminWithWhatsApp(ctx)
	if err != nil {
		return "", err
	}
	if admin != nil && admin.WhatsAppNumber != nil && *admin.WhatsAppNumber != "" {
		return *admin.WhatsAppNumber, nil
	}
	return r.FallbackContact, nil
}

func (r *ProfileSettingsResolver) credentials(ctx context.Context) channel.Credentials {
	creds := r.FallbackCredentials
	if r.Secrets == nil {
		return creds
	}

	secrets, err := r.Secrets.Get(ctx, SecretWhatsAppToken, SecretWhatsAppPhoneNumberID)
	if err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to read WhatsApp secrets, using configured credentials")
		return creds
	}
	if v := secrets[SecretWhatsAppToken]; v != "" {
		creds.Token = v
	}
	if v := secrets[SecretWhatsAppPhoneNumberID]; v != "" {
		creds.PhoneNumberID = v
	}
	return creds
}

// SaveAdminContact stores the operator's WhatsApp number, keeping only digits and '+'.
func (r *ProfileSettingsResolver) SaveAdminContact(ctx context.Context, operatorID, number string) (string, error) {
	cleaned := repository.CleanWhatsAppNumber(number)
	if channel.Digits(cleaned) == "" {
		return "", appErrors.NewBadRequest("whatsapp number must contain digits")
	}
	if err := r.Profiles.SaveWhatsAppNumber(ctx, operatorID, cleaned); err != nil {
		return "", err
	}
	return cleaned, nil
}

// isConfigurationMissing reports whether err only says the admin contact is absent.
func isConfigurationMissing(err error) bool {
	return errors.Is(err, appErrors.ErrConfigurationMissing)
}
