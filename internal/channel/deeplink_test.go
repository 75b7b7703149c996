package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
)

func TestBuildLink(t *testing.T) {
	link := BuildLink("https://api.whatsapp.com", "+1 (234) 567-8900", "Need blood & help? 100%")
	assert.Equal(t, "https://api.whatsapp.com/send?phone=12345678900&text=Need%20blood%20%26%20help%3F%20100%25", link)
}

func TestDeepLinkSend_OpensOnce(t *testing.T) {
	var opened []string
	opener := OpenerFunc(func(_ context.Context, link string) error {
		opened = append(opened, link)
		return nil
	})
	d := NewDeepLink("https://api.whatsapp.com/", opener)

	receipt, err := d.Send(context.Background(), Message{Phone: "+1 (234) 567-8900", Text: "hi there"})
	require.NoError(t, err)
	require.Len(t, opened, 1)
	assert.Equal(t, "https://api.whatsapp.com/send?phone=12345678900&text=hi%20there", opened[0])
	assert.Equal(t, opened[0], receipt.Link)
	assert.Equal(t, model.ChannelWhatsApp, d.Type())
}

func TestDeepLinkSend_DefaultText(t *testing.T) {
	var got string
	d := NewDeepLink("https://wa.example", OpenerFunc(func(_ context.Context, link string) error {
		got = link
		return nil
	}))

	_, err := d.Send(context.Background(), Message{Phone: "123", AdminContact: "+19999999999"})
	require.NoError(t, err)
	assert.Contains(t, got, "text=Need%20blood%20donation.%20Please%20contact%20%2B19999999999%20if%20available.")
}

func TestDeepLinkSend_InvalidRecipientNeverOpens(t *testing.T) {
	calls := 0
	d := NewDeepLink("https://wa.example", OpenerFunc(func(context.Context, string) error {
		calls++
		return nil
	}))

	_, err := d.Send(context.Background(), Message{Phone: "---"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidRecipient))
	assert.Equal(t, 0, calls)
}

func TestDeepLinkSend_OpenerFailure(t *testing.T) {
	d := NewDeepLink("https://wa.example", OpenerFunc(func(context.Context, string) error {
		return errors.New("no handler for scheme")
	}))

	_, err := d.Send(context.Background(), Message{Phone: "123"})
	assert.True(t, errors.Is(err, appErrors.ErrUnexpectedChannel))
}

func TestDeepLinkSend_DoesNotReapplyCountryCode(t *testing.T) {
	var got string
	d := NewDeepLink("https://wa.example", OpenerFunc(func(_ context.Context, link string) error {
		got = link
		return nil
	}))

	_, err := d.Send(context.Background(), Message{Phone: "9876543210"})
	require.NoError(t, err)
	assert.Contains(t, got, "phone=9876543210&")
}

func TestValidatePhone(t *testing.T) {
	got, err := ValidatePhone("+91 98765-43210")
	require.NoError(t, err)
	assert.Equal(t, "919876543210", got)

	_, err = ValidatePhone("n/a")
	assert.True(t, errors.Is(err, appErrors.ErrInvalidRecipient))
}
