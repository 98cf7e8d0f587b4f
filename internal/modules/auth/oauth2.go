package auth

import (
	"fmt"
	"strings"
)

// ExternalProfile is a verified identity handed over by the provider
// handshake. The handshake itself (token exchange with the provider) lives
// outside this module; by the time a profile reaches us it is trusted.
type ExternalProfile struct {
	Provider   string
	ExternalID string
	Email      string
	Name       string
}

// UserInfoExtractor maps one provider's raw attribute payload to a profile.
type UserInfoExtractor interface {
	Extract(attrs map[string]any) (*ExternalProfile, error)
}

// ExtractorRegistry resolves extractors by provider name. Built once at
// startup; lookup never does runtime type inspection.
type ExtractorRegistry struct {
	strategies map[string]UserInfoExtractor
}

func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{
		strategies: map[string]UserInfoExtractor{
			"google": googleExtractor{},
			"kakao":  kakaoExtractor{},
			"naver":  naverExtractor{},
		},
	}
}

func (r *ExtractorRegistry) Extract(provider string, attrs map[string]any) (*ExternalProfile, error) {
	strategy, ok := r.strategies[strings.ToLower(provider)]
	if !ok {
		return nil, fmt.Errorf("unsupported oauth2 provider: %s", provider)
	}
	profile, err := strategy.Extract(attrs)
	if err != nil {
		return nil, err
	}
	profile.Provider = strings.ToLower(provider)
	return profile, nil
}

type googleExtractor struct{}

func (googleExtractor) Extract(attrs map[string]any) (*ExternalProfile, error) {
	id, _ := attrs["sub"].(string)
	email, _ := attrs["email"].(string)
	name, _ := attrs["name"].(string)
	if id == "" || email == "" {
		return nil, fmt.Errorf("google profile missing sub/email")
	}
	return &ExternalProfile{ExternalID: id, Email: email, Name: name}, nil
}

type kakaoExtractor struct{}

func (kakaoExtractor) Extract(attrs map[string]any) (*ExternalProfile, error) {
	// kakao ids arrive as JSON numbers
	idNum, ok := attrs["id"].(float64)
	if !ok {
		return nil, fmt.Errorf("kakao profile missing id")
	}
	account, _ := attrs["kakao_account"].(map[string]any)
	email, _ := account["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("kakao profile missing email")
	}
	var name string
	if profile, ok := account["profile"].(map[string]any); ok {
		name, _ = profile["nickname"].(string)
	}
	return &ExternalProfile{
		ExternalID: fmt.Sprintf("%.0f", idNum),
		Email:      email,
		Name:       name,
	}, nil
}

type naverExtractor struct{}

func (naverExtractor) Extract(attrs map[string]any) (*ExternalProfile, error) {
	resp, ok := attrs["response"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("naver profile missing response")
	}
	id, _ := resp["id"].(string)
	email, _ := resp["email"].(string)
	name, _ := resp["name"].(string)
	if id == "" || email == "" {
		return nil, fmt.Errorf("naver profile missing id/email")
	}
	return &ExternalProfile{ExternalID: id, Email: email, Name: name}, nil
}
