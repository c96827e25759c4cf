package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

// Chat-bot APIs reject oversized markdown payloads.
const maxBotContentLen = 5000

// BotConfig holds DingTalk-style work-notification credentials.
type BotConfig struct {
	APIBase   string `yaml:"api_base"`
	AppKey    string `yaml:"app_key"`
	AppSecret string `yaml:"app_secret"`
	AgentID   string `yaml:"agent_id"`
	UserID    string `yaml:"user_id"`
}

// BotNotifier sends a markdown work notification to a single user
// through an enterprise chat-bot API: fetch an access token, then post
// the message.
type BotNotifier struct {
	cfg        BotConfig
	httpClient *http.Client

	accessToken string
}

// NewBotNotifier creates a chat-bot notifier.
func NewBotNotifier(cfg BotConfig) *BotNotifier {
	return &BotNotifier{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (n *BotNotifier) Name() string { return "bot" }

// Send delivers a markdown message, truncating oversized content.
func (n *BotNotifier) Send(ctx context.Context, title, content string) error {
	token, err := n.token(ctx)
	if err != nil {
		return &domain.NotifyError{Channel: n.Name(), Err: err}
	}

	if len(content) > maxBotContentLen {
		content = content[:maxBotContentLen-100] + "\n\n...(truncated)"
	}

	payload := map[string]any{
		"agent_id":    n.cfg.AgentID,
		"userid_list": n.cfg.UserID,
		"msg": map[string]any{
			"msgtype": "markdown",
			"markdown": map[string]string{
				"title": title,
				"text":  content,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &domain.NotifyError{Channel: n.Name(), Err: err}
	}

	sendURL := n.cfg.APIBase + "/topapi/message/corpconversation/asyncsend_v2?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewReader(body))
	if err != nil {
		return &domain.NotifyError{Channel: n.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return &domain.NotifyError{Channel: n.Name(), Err: err}
	}
	defer resp.Body.Close()

	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return &domain.NotifyError{Channel: n.Name(), Err: err}
	}
	if result.ErrCode != 0 {
		return &domain.NotifyError{Channel: n.Name(), Err: fmt.Errorf("send failed: %d %s", result.ErrCode, result.ErrMsg)}
	}
	return nil
}

func (n *BotNotifier) token(ctx context.Context) (string, error) {
	if n.accessToken != "" {
		return n.accessToken, nil
	}

	u, err := url.Parse(n.cfg.APIBase + "/gettoken")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("appkey", n.cfg.AppKey)
	q.Set("appsecret", n.cfg.AppSecret)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		ErrCode     int    `json:"errcode"`
		ErrMsg      string `json:"errmsg"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.ErrCode != 0 {
		return "", fmt.Errorf("token request failed: %d %s", result.ErrCode, result.ErrMsg)
	}
	n.accessToken = result.AccessToken
	return n.accessToken, nil
}
