package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	gate := NewGate("secret-token")

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{
			name:    "valid token",
			header:  "Bearer secret-token",
			wantErr: nil,
		},
		{
			name:    "missing header",
			header:  "",
			wantErr: ErrMissingCredential,
		},
		{
			name:    "wrong scheme",
			header:  "Basic secret-token",
			wantErr: ErrMissingCredential,
		},
		{
			name:    "lowercase scheme",
			header:  "bearer secret-token",
			wantErr: ErrMissingCredential,
		},
		{
			name:    "wrong token",
			header:  "Bearer other-token",
			wantErr: ErrInvalidCredential,
		},
		{
			name:    "token is a prefix of the expected one",
			header:  "Bearer secret",
			wantErr: ErrInvalidCredential,
		},
		{
			name:    "expected token is a prefix of the presented one",
			header:  "Bearer secret-token-and-more",
			wantErr: ErrInvalidCredential,
		},
		{
			name:    "empty token",
			header:  "Bearer ",
			wantErr: ErrInvalidCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(tt.header)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAuthorizeFailsClosedWithoutToken(t *testing.T) {
	gate := NewGate("")

	// Even a request that would otherwise be well-formed must be rejected
	require.ErrorIs(t, gate.Authorize("Bearer anything"), ErrNotConfigured)
	require.ErrorIs(t, gate.Authorize(""), ErrNotConfigured)
}
