package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UserInfoVerifier fetches the provider's user attributes for a callback that
// already carries a provider-issued access token. The code-for-token exchange
// with the provider happens upstream; this type only resolves the token to a
// profile payload.
type UserInfoVerifier struct {
	client    *http.Client
	endpoints map[string]string
}

func NewUserInfoVerifier() *UserInfoVerifier {
	return &UserInfoVerifier{
		client: &http.Client{Timeout: 10 * time.Second},
		endpoints: map[string]string{
			"google": "https://openidconnect.googleapis.com/v1/userinfo",
			"kakao":  "https://kapi.kakao.com/v2/user/me",
			"naver":  "https://openapi.naver.com/v1/nid/me",
		},
	}
}

func (v *UserInfoVerifier) VerifyCallback(ctx context.Context, provider string, query url.Values) (map[string]any, error) {
	token := query.Get("token")
	if token == "" {
		return nil, errors.New("callback missing provider token")
	}

	endpoint, ok := v.endpoints[strings.ToLower(provider)]
	if !ok {
		return nil, fmt.Errorf("unsupported oauth2 provider: %s", provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %s", resp.Status)
	}

	var attrs map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
