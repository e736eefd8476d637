package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Client sends transactional mail through Postmark. It carries the consent
// flow: verification requests go to the caregiver's address, never the child.
type Client struct {
	serverToken string
	fromEmail   string
	baseURL     string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail, baseURL string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		baseURL:     baseURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendConsentRequest emails a caregiver the verification link for a child
// account.
func (c *Client) SendConsentRequest(toEmail, token, childAlias string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	link := fmt.Sprintf("%s/consent/verify?token=%s", c.baseURL, token)
	subject := fmt.Sprintf("Confirma la cuenta de %s en Semillita", childAlias)
	textBody := fmt.Sprintf(
		"%s quiere usar Semillita, un diario de emociones para niños.\n\nPara autorizar su cuenta, abre este enlace:\n\n%s\n\nEl enlace expira en 7 días. Si no reconoces esta solicitud, ignora este correo.",
		childAlias, link,
	)
	htmlBody := fmt.Sprintf(
		`<p><strong>%s</strong> quiere usar Semillita, un diario de emociones para niños.</p><p><a href="%s">Autorizar la cuenta</a></p><p>El enlace expira en 7 días. Si no reconoces esta solicitud, ignora este correo.</p>`,
		childAlias, link,
	)

	return c.send(postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
}

func (c *Client) send(payload postmarkEmail) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.postmarkapp.com/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
