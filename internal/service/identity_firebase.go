package service

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
)

// IdentityToken is the verified identity-provider token payload the auth
// service cares about.
type IdentityToken struct {
	UID   string
	Email string
}

// identityClient abstracts the identity provider so the auth service can be
// exercised without live Firebase credentials.
type identityClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*IdentityToken, error)
	UpdatePassword(ctx context.Context, uid, newPassword string) error
}

// FirebaseIdentity adapts the Firebase Auth client to identityClient.
type FirebaseIdentity struct {
	client *fbauth.Client
}

// NewFirebaseIdentity wraps a Firebase Auth client.
func NewFirebaseIdentity(client *fbauth.Client) *FirebaseIdentity {
	return &FirebaseIdentity{client: client}
}

// VerifyIDToken validates a device-minted ID token and extracts uid and email.
func (f *FirebaseIdentity) VerifyIDToken(ctx context.Context, idToken string) (*IdentityToken, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	email, _ := token.Claims["email"].(string)
	return &IdentityToken{UID: token.UID, Email: email}, nil
}

// UpdatePassword sets a new password on the provider account.
func (f *FirebaseIdentity) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	params := (&fbauth.UserToUpdate{}).Password(newPassword)
	if _, err := f.client.UpdateUser(ctx, uid, params); err != nil {
		return fmt.Errorf("update password for %s: %w", uid, err)
	}
	return nil
}
