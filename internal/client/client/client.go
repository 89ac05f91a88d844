package client

import (
	"context"

	"github.com/dmitrijs2005/gophershop/internal/client/docstore"
)

// Documents is the remote document store.
type Documents interface {
	// List returns every document of a collection, following pagination.
	List(ctx context.Context, collection string) ([]docstore.Document, error)
	Get(ctx context.Context, collection, id string) (*docstore.Document, error)
	// Create adds a document with a store-assigned id.
	Create(ctx context.Context, collection string, fields map[string]docstore.Value) (*docstore.Document, error)
	// Patch updates only the fields named in mask. Fields outside the mask
	// are left untouched, including ones absent from fields.
	Patch(ctx context.Context, collection, id string, fields map[string]docstore.Value, mask []string) (*docstore.Document, error)
	Delete(ctx context.Context, collection, id string) error
}

// AuthResult is the identity provider's answer to sign-in and sign-up.
type AuthResult struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    string `json:"expiresIn,omitempty"`
}

// Auth is the identity provider.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignUp(ctx context.Context, email, password string) (*AuthResult, error)
	SendPasswordReset(ctx context.Context, email string) error
	// SetIDToken sets the bearer token sent with document requests. An empty
	// token sends none.
	SetIDToken(token string)
}
