package stellar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// Faucet funds a new account on test networks.
type Faucet interface {
	Fund(ctx context.Context, address string) (txHash string, err error)
}

// Friendbot is the testnet faucet.
type Friendbot struct {
	url  string
	http *http.Client
}

func NewFriendbot(friendbotURL string, timeout time.Duration) *Friendbot {
	return &Friendbot{url: friendbotURL, http: &http.Client{Timeout: timeout}}
}

// Fund asks friendbot to create and fund address. It returns the funding
// transaction hash.
func (f *Friendbot) Fund(ctx context.Context, address string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url+"?addr="+url.QueryEscape(address), nil)
	if err != nil {
		return "", fmt.Errorf("building friendbot request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling friendbot: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading friendbot response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := gjson.GetBytes(body, "detail").String()
		return "", fmt.Errorf("friendbot returned %d: %s", resp.StatusCode, detail)
	}
	return gjson.GetBytes(body, "hash").String(), nil
}
