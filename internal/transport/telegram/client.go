package telegram

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/internal/config"
)

const defaultAPIBase = "https://api.telegram.org"

// Client is a thin Bot API client covering the two calls the bot needs:
// sendMessage for outbound text and getUpdates for long polling.
type Client struct {
	token       string
	apiBase     string
	sendTimeout time.Duration
	pollTimeout time.Duration
	http        *fasthttp.Client
	logger      *zap.Logger
}

func NewClient(cfg config.TelegramConfig, logger *zap.Logger) *Client {
	return &Client{
		token:       cfg.Token,
		apiBase:     defaultAPIBase,
		sendTimeout: cfg.SendTimeout,
		pollTimeout: cfg.PollTimeout,
		http: &fasthttp.Client{
			// Long polls hold the connection open for pollTimeout, so the
			// read deadline has to exceed it.
			ReadTimeout:  cfg.PollTimeout + 10*time.Second,
			WriteTimeout: cfg.SendTimeout,
		},
		logger: logger,
	}
}

// Update is a single inbound event from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset"`
	Timeout int   `json:"timeout"`
}

// SendText delivers body to the given chat. Failures come back as
// ErrCodeDelivery so callers can decide whether to log or retry.
func (c *Client) SendText(recipient int64, body string, mode domain.RenderMode) error {
	payload := sendMessageRequest{
		ChatID:    recipient,
		Text:      body,
		ParseMode: string(mode),
	}

	var out apiResponse
	if err := c.call("sendMessage", payload, c.sendTimeout, &out); err != nil {
		return err
	}
	return nil
}

// GetUpdates long-polls for updates with update_id >= offset.
func (c *Client) GetUpdates(offset int64) ([]Update, error) {
	payload := getUpdatesRequest{
		Offset:  offset,
		Timeout: int(c.pollTimeout.Seconds()),
	}

	var out apiResponse
	if err := c.call("getUpdates", payload, c.pollTimeout+10*time.Second, &out); err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(out.Result, &updates); err != nil {
		return nil, domain.WrapError(domain.ErrCodeDelivery, "decoding updates", err)
	}
	return updates, nil
}

func (c *Client) call(method string, payload any, timeout time.Duration, out *apiResponse) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "encoding request", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return domain.WrapError(domain.ErrCodeDelivery, method+" request failed", err)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.WrapError(domain.ErrCodeDelivery, "decoding "+method+" response", err)
	}
	if !out.OK {
		return domain.NewError(domain.ErrCodeDelivery,
			fmt.Sprintf("%s rejected: %s", method, out.Description))
	}
	return nil
}
