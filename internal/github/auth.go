// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/iplixera/nivostack-monorepo/internal/ghcli"
	"github.com/iplixera/nivostack-monorepo/internal/secrets"
	"github.com/iplixera/nivostack-monorepo/pkg/types"
)

// errNotConfigured marks a provider with nothing to offer. Resolve skips
// it without a warning.
var errNotConfigured = errors.New("not configured")

// Credential is the outcome of a successful provider.
type Credential struct {
	// Source names the provider ("gh", "env GITHUB_TOKEN", "file ~/.devbridge_tokens").
	Source string

	// Token is set for token providers.
	Token string

	// Login is the account the token belongs to, when known.
	Login string

	// CLI is set when the gh tool authenticated.
	CLI *ghcli.Tool
}

// Provider yields a credential or an error explaining why it cannot.
type Provider interface {
	Name() string
	Credential(ctx context.Context) (Credential, error)
}

// CLIProvider succeeds when the gh tool is installed and logged in. A
// missing binary is not configured; a logged-out one is a warning.
type CLIProvider struct {
	Bin string
}

func (p *CLIProvider) Name() string {
	if p.Bin == "" {
		return ghcli.DefaultBin
	}
	return p.Bin
}

func (p *CLIProvider) Credential(ctx context.Context) (Credential, error) {
	tool, err := ghcli.Detect(ctx, p.Bin)
	if errors.Is(err, ghcli.ErrNotInstalled) {
		return Credential{}, errNotConfigured
	}
	if err != nil {
		return Credential{}, err
	}
	return Credential{Source: tool.Name(), CLI: tool}, nil
}

// EnvProvider reads a token from an environment variable.
type EnvProvider struct {
	Var       string
	Validator *TokenValidator
}

func (p *EnvProvider) Name() string { return "env " + p.Var }

func (p *EnvProvider) Credential(ctx context.Context) (Credential, error) {
	token := strings.TrimSpace(os.Getenv(p.Var))
	if token == "" || isPlaceholder(token) {
		return Credential{}, errNotConfigured
	}
	return validated(ctx, p.Validator, p.Name(), token)
}

// FileProvider reads a token from a KEY=value dotfile.
type FileProvider struct {
	Path      string
	Key       string
	Validator *TokenValidator
}

func (p *FileProvider) Name() string { return "file " + p.Path }

func (p *FileProvider) Credential(ctx context.Context) (Credential, error) {
	values, err := secrets.Load(p.Path)
	if err != nil {
		return Credential{}, err
	}
	token := values[p.Key]
	if token == "" {
		return Credential{}, errNotConfigured
	}
	return validated(ctx, p.Validator, p.Name(), token)
}

func validated(ctx context.Context, v *TokenValidator, source, token string) (Credential, error) {
	cred := Credential{Source: source, Token: token}
	if v == nil {
		return cred, nil
	}
	login, err := v.Validate(ctx, token)
	if err != nil {
		return Credential{}, err
	}
	cred.Login = login
	return cred, nil
}

func isPlaceholder(token string) bool {
	for _, p := range secrets.Placeholders {
		if strings.EqualFold(token, p) {
			return true
		}
	}
	return false
}

// TokenValidator checks a token with GET /user.
type TokenValidator struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

// Validate returns the login of the token's account. A rejected token
// matches ErrUnauthorized.
func (v *TokenValidator) Validate(ctx context.Context, token string) (string, error) {
	reqURL := v.BaseURL + "/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	setHeaders(req, token, v.UserAgent)

	resp, err := v.Client.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "GET " + reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readHTTPError(resp)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("parsing GitHub user: %w", err)
	}
	return user.Login, nil
}

// Providers returns the standard chain for cfg: the gh tool (when
// cfg.CLI is set), then the token environment variable, then the token
// file.
func Providers(cfg types.GitHubConfig, client *http.Client) []Provider {
	validator := &TokenValidator{
		Client:    httpClient(client, cfg.Timeout),
		BaseURL:   apiBase(cfg.APIBase),
		UserAgent: cfg.UserAgent,
	}
	var chain []Provider
	if cfg.CLI != "" {
		chain = append(chain, &CLIProvider{Bin: cfg.CLI})
	}
	if cfg.TokenEnv != "" {
		chain = append(chain, &EnvProvider{Var: cfg.TokenEnv, Validator: validator})
		if cfg.TokenFile != "" {
			chain = append(chain, &FileProvider{Path: cfg.TokenFile, Key: cfg.TokenEnv, Validator: validator})
		}
	}
	return chain
}

// Resolve tries providers in order and returns the first credential. A
// provider that is configured but fails (an invalid token, a logged-out
// gh) is reported on w as a warning and the chain continues.
func Resolve(ctx context.Context, providers []Provider, w io.Writer) (Credential, error) {
	for _, p := range providers {
		cred, err := p.Credential(ctx)
		if err == nil {
			return cred, nil
		}
		if ctx.Err() != nil {
			return Credential{}, ctx.Err()
		}
		if !errors.Is(err, errNotConfigured) && w != nil {
			fmt.Fprintf(w, "warning: %s: %v\n", p.Name(), err)
		}
	}
	return Credential{}, ErrNoCredential
}

// NewCreator builds the creator matching cred. trace receives rate-limit
// notices from the API client and may be nil.
func NewCreator(cred Credential, cfg types.GitHubConfig, client *http.Client, trace io.Writer) IssueCreator {
	if cred.CLI != nil {
		return &CLIClient{Tool: cred.CLI, Repo: cfg.Slug()}
	}
	c := NewAPIClient(cfg, cred.Token, client)
	c.Trace = trace
	return c
}
