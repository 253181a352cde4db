package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/phrazzld/taskpulse/internal/config"
	"github.com/phrazzld/taskpulse/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "tokengen-test-secret-of-enough-length"

func TestRunIssuesVerifiableTokens(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&out, testSecret, 5, []string{"10", "20"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 5})
	require.NoError(t, err)

	for i, want := range []int64{10, 20} {
		_, token, ok := strings.Cut(lines[i], ": ")
		require.True(t, ok)

		claims, err := svc.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, want, claims.UserID)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	var out bytes.Buffer

	assert.Error(t, run(&out, "short", 5, []string{"1"}))
	assert.Error(t, run(&out, testSecret, 5, []string{"abc"}))
	assert.Error(t, run(&out, testSecret, 5, []string{"0"}))
	assert.Empty(t, out.String())
}
