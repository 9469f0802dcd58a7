// Package integration provides end-to-end tests for the session token transform.
package integration

import (
	"bytes"
	"context"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/sessiontoken/cmd/app/commands"
	"github.com/allisson/sessiontoken/internal/app"
	"github.com/allisson/sessiontoken/internal/config"
	tokenDomain "github.com/allisson/sessiontoken/internal/token/domain"
)

// masterSecret is 32 bytes of 0x41, base64 encoded.
const masterSecret = "QUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUFBQUE="

var envLinePattern = regexp.MustCompile(`(?m)^([A-Z_]+)="([^"]*)"$`)

// applyKeygenOutput runs keygen with the given algorithms and exports its
// output as environment variables for the current test.
func applyKeygenOutput(t *testing.T, cipherAlg, macAlg, secret string) {
	t.Helper()

	var out bytes.Buffer
	require.NoError(t, commands.RunKeygen(&out, cipherAlg, macAlg, secret))

	matches := envLinePattern.FindAllStringSubmatch(out.String(), -1)
	require.Len(t, matches, 4)
	for _, match := range matches {
		t.Setenv(match[1], match[2])
	}
}

func newTestContainer(t *testing.T, metricsEnabled bool) *app.Container {
	t.Helper()

	cfg := config.Load()
	cfg.MetricsEnabled = metricsEnabled
	require.NoError(t, cfg.Validate())

	container := app.NewContainer(cfg)
	t.Cleanup(func() {
		require.NoError(t, container.Shutdown(context.Background()))
	})
	return container
}

func TestSessionTokenEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	algorithms := []struct {
		name      string
		cipherAlg string
		macAlg    string
	}{
		{name: "AES128-SHA256", cipherAlg: "aes-128-cbc", macAlg: "hmac-sha256"},
		{name: "AES192-SHA512", cipherAlg: "aes-192-cbc", macAlg: "hmac-sha512"},
		{name: "AES256-SHA256", cipherAlg: "aes-256-cbc", macAlg: "hmac-sha256"},
		{name: "AES256-SHA512", cipherAlg: "aes-256-cbc", macAlg: "hmac-sha512"},
	}

	for _, alg := range algorithms {
		t.Run(alg.name, func(t *testing.T) {
			applyKeygenOutput(t, alg.cipherAlg, alg.macAlg, masterSecret)

			container := newTestContainer(t, false)
			transformer, err := container.Transformer()
			require.NoError(t, err)

			payload := "user-1234|role=admin|expires=2026-12-31"

			t.Run("RoundTrip", func(t *testing.T) {
				token, err := transformer.Encode(payload)
				require.NoError(t, err)
				assert.Regexp(t, `^[0-9a-f]+/[0-9a-f]+:[0-9a-f]+$`, token)

				decoded, err := transformer.Decode(token)
				require.NoError(t, err)
				assert.Equal(t, payload, decoded)
			})

			t.Run("TamperedTokenRejected", func(t *testing.T) {
				token, err := transformer.Encode(payload)
				require.NoError(t, err)

				replacement := "0"
				if token[0] == '0' {
					replacement = "1"
				}
				tampered := replacement + token[1:]

				_, err = transformer.Decode(tampered)
				assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
			})

			t.Run("ForeignKeyTokenRejected", func(t *testing.T) {
				token, err := transformer.Encode(payload)
				require.NoError(t, err)

				// Same algorithms, different master secret
				applyKeygenOutput(t, alg.cipherAlg, alg.macAlg, "")
				foreignContainer := newTestContainer(t, false)
				foreignTransformer, err := foreignContainer.Transformer()
				require.NoError(t, err)

				_, err = foreignTransformer.Decode(token)
				assert.ErrorIs(t, err, tokenDomain.ErrInvalidToken)
			})
		})
	}
}

func TestSessionTokenCommandsEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	applyKeygenOutput(t, "aes-256-cbc", "hmac-sha256", masterSecret)
	t.Setenv("METRICS_ENABLED", "false")
	ctx := context.Background()

	var encoded bytes.Buffer
	require.NoError(t, commands.RunEncode(ctx, commands.IOTuple{Writer: &encoded}, "cli-session"))
	token := strings.TrimSpace(encoded.String())

	var decoded bytes.Buffer
	require.NoError(t, commands.RunDecode(ctx, commands.IOTuple{Writer: &decoded}, token))
	assert.Equal(t, "cli-session\n", decoded.String())

	var bench bytes.Buffer
	require.NoError(t, commands.RunBench(ctx, commands.IOTuple{Writer: &bench}, 2, 3, 0, "bench", false))
	assert.Contains(t, bench.String(), "rounds=6")
}

func TestSessionTokenMetricsEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	applyKeygenOutput(t, "aes-256-cbc", "hmac-sha256", masterSecret)

	container := newTestContainer(t, true)
	transformer, err := container.Transformer()
	require.NoError(t, err)

	token, err := transformer.Encode("metered-session")
	require.NoError(t, err)
	_, err = transformer.Decode(token)
	require.NoError(t, err)
	_, err = transformer.Decode("garbage")
	require.Error(t, err)

	server, err := container.MetricsServer()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(rec, req)
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "sessiontoken_operations")
	assert.Contains(t, body, `operation="token_encode"`)
	assert.Contains(t, body, `operation="token_decode"`)
	assert.Contains(t, body, `status="error"`)
}
