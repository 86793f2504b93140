package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/monocle-dev/todolist/internal/models"
)

// OAuthProvider is the third-party sign-in flow used by the handlers.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (models.GoogleProfile, error)
}

type GoogleProvider struct {
	config      *oauth2.Config
	apiEndpoint string
}

func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{oauth2api.UserinfoProfileScope, oauth2api.UserinfoEmailScope},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and reads the user's profile.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (models.GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)

	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	opts := []option.ClientOption{option.WithTokenSource(g.config.TokenSource(ctx, token))}

	if g.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.apiEndpoint))
	}

	svc, err := oauth2api.NewService(ctx, opts...)

	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()

	if err != nil {
		return models.GoogleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}

	return models.GoogleProfile{
		ID:      info.Id,
		Email:   info.Email,
		Picture: info.Picture,
	}, nil
}
