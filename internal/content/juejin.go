package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/admin_console/pkg/logging"
	"github.com/go-resty/resty/v2"
)

const DefaultJuejinURL = "https://api.juejin.cn/content_api/v1/article/query_list"

var ErrUpstream = errors.New("upstream content service failed")

// ArticleList is what the console shows: the raw upstream items and the
// upstream total.
type ArticleList struct {
	List  json.RawMessage `json:"list"`
	Total int64           `json:"total"`
}

type juejinResponse struct {
	ErrNo  int             `json:"err_no"`
	ErrMsg string          `json:"err_msg"`
	Data   json.RawMessage `json:"data"`
	Count  int64           `json:"count"`
}

// JuejinClient proxies the article list query. Requests are not retried.
type JuejinClient struct {
	http *resty.Client
	url  string
}

func NewJuejinClient(url string, timeout time.Duration) *JuejinClient {
	if url == "" {
		url = DefaultJuejinURL
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &JuejinClient{http: client, url: url}
}

// Articles forwards params unchanged as the request body.
func (c *JuejinClient) Articles(ctx context.Context, params map[string]any) (*ArticleList, error) {
	l := logging.FromContext(ctx).With("client", "juejin")

	var body juejinResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(params).
		SetResult(&body).
		Post(c.url)
	if err != nil {
		l.Warn("juejin_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.IsError() {
		l.Warn("juejin_failed", "status", resp.StatusCode())
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}
	if body.ErrNo != 0 {
		l.Warn("juejin_failed", "err_no", body.ErrNo, "err_msg", body.ErrMsg)
		return nil, fmt.Errorf("%w: %s (%d)", ErrUpstream, body.ErrMsg, body.ErrNo)
	}

	list := body.Data
	if len(list) == 0 || string(list) == "null" {
		list = json.RawMessage("[]")
	}
	return &ArticleList{List: list, Total: body.Count}, nil
}
