package channel

import (
	"context"
	"net/url"
	"strings"

	"github.com/wb-go/wbf/zlog"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
)

// Opener invokes a deep link. The server has no handset, so in practice the
// link travels back to the operator in the Receipt and the Opener only records it.
type Opener interface {
	Open(ctx context.Context, link string) error
}

type OpenerFunc func(ctx context.Context, link string) error

func (f OpenerFunc) Open(ctx context.Context, link string) error {
	return f(ctx, link)
}

// LogOpener logs the link for the operator.
type LogOpener struct{}

func (LogOpener) Open(_ context.Context, link string) error {
	zlog.Logger.Info().Str("link", link).Msg("deep link ready")
	return nil
}

type DeepLink struct {
	base   string
	opener Opener
}

func NewDeepLink(base string, opener Opener) *DeepLink {
	if opener == nil {
		opener = LogOpener{}
	}
	return &DeepLink{
		base:   strings.TrimRight(base, "/"),
		opener: opener,
	}
}

func (d *DeepLink) Type() model.ChannelType {
	return model.ChannelWhatsApp
}

// Send builds the link and opens it. Delivery is out of our hands once the
// link is opened, so success only means the link was built and opened.
func (d *DeepLink) Send(ctx context.Context, msg Message) (Receipt, error) {
	phone, err := ValidatePhone(msg.Phone)
	if err != nil {
		return Receipt{}, err
	}

	text := msg.Text
	if text == "" {
		text = DefaultText(msg.AdminContact)
	}

	link := BuildLink(d.base, phone, text)
	if err := d.opener.Open(ctx, link); err != nil {
		return Receipt{Link: link}, appErrors.NewUnexpectedChannelError(err)
	}
	return Receipt{Link: link}, nil
}

// BuildLink returns <base>/send?phone=<digits>&text=<percent-encoded text>.
// Spaces are encoded as %20 so the link opens the same everywhere.
func BuildLink(base, phone, text string) string {
	return base + "/send?phone=" + Digits(phone) + "&text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// DefaultText is the fixed outreach body used when no rendered text is given.
func DefaultText(adminContact string) string {
	if adminContact == "" {
		return "Need blood donation. Please contact if available."
	}
	return "Need blood donation. Please contact " + adminContact + " if available."
}

var _ Adapter = (*DeepLink)(nil)
