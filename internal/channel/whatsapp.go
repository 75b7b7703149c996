package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appErrors "github.com/unclebandit/donorlink-backend/internal/errors"
	"github.com/unclebandit/donorlink-backend/internal/model"
)

// recipientNotAllowed is the Cloud API code for a number missing from a test
// account's allowed list.
const recipientNotAllowed = 131030

const maxErrorBody = 64 << 10

// WhatsAppClient sends template messages through the WhatsApp Cloud API.
type WhatsAppClient struct {
	baseURL      string
	templateName string
	languageCode string
	client       *http.Client
}

type WhatsAppOptions struct {
	BaseURL      string
	TemplateName string
	LanguageCode string
	Timeout      time.Duration
}

func NewWhatsAppClient(opts WhatsAppOptions) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		templateName: opts.TemplateName,
		languageCode: opts.LanguageCode,
		client:       &http.Client{Timeout: opts.Timeout},
	}
}

type templateRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         templatePayload `json:"template"`
}

type templatePayload struct {
	Name       string              `json:"name"`
	Language   templateLanguage    `json:"language"`
	Components []templateComponent `json:"components"`
}

type templateLanguage struct {
	Code string `json:"code"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *WhatsAppClient) Type() model.ChannelType {
	return model.ChannelWhatsAppAPI
}

// Send posts one template message. The template body takes two parameters:
// the recipient's name and the admin contact number.
func (c *WhatsAppClient) Send(ctx context.Context, msg Message) (Receipt, error) {
	phone, err := ValidatePhone(msg.Phone)
	if err != nil {
		return Receipt{}, err
	}

	creds := msg.Credentials
	if creds.Token == "" || creds.PhoneNumberID == "" {
		return Receipt{}, appErrors.NewCredentialsMissing("WhatsApp API token or phone number ID is not configured")
	}

	reqBody := templateRequest{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "template",
		Template: templatePayload{
			Name:     c.templateName,
			Language: templateLanguage{Code: c.languageCode},
			Components: []templateComponent{{
				Type: "body",
				Parameters: []templateParameter{
					{Type: "text", Text: msg.RecipientName},
					{Type: "text", Text: msg.AdminContact},
				},
			}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Receipt{}, appErrors.NewUnexpectedChannelError(fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, creds.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, appErrors.NewUnexpectedChannelError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Receipt{}, appErrors.NewUnexpectedChannelError(fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return Receipt{}, appErrors.NewUnexpectedChannelError(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Receipt{StatusCode: resp.StatusCode}, rejection(resp, raw)
	}

	receipt := Receipt{StatusCode: resp.StatusCode}
	var ok sendResponse
	if err := json.Unmarshal(raw, &ok); err == nil && len(ok.Messages) > 0 {
		receipt.MessageID = ok.Messages[0].ID
	}
	return receipt, nil
}

func rejection(resp *http.Response, raw []byte) error {
	message := "WhatsApp API error: " + resp.Status

	var apiErr errorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
		if apiErr.Error.Code == recipientNotAllowed {
			message = "recipient phone number is not in the allowed list for this WhatsApp test account: " + message
		}
	}
	return appErrors.NewChannelRejected(resp.StatusCode, message, string(raw))
}

var _ Adapter = (*WhatsAppClient)(nil)
