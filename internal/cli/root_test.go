package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fountain/fountain-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"keygen", "migrate", "sweep", "wallet-status", "trustline"}, names)

	flag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, flag)
	assert.Equal(t, "text", flag.DefValue)
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "--format", "yaml", "keygen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestKeygen(t *testing.T) {
	out, err := execute(t, "keygen")
	require.NoError(t, err)

	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, key, 32)

	out, err = execute(t, "--format", "json", "keygen")
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.NotEmpty(t, payload["key"])
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database url is required")
}

func TestWalletStatus_ValidatesArgs(t *testing.T) {
	_, err := execute(t, "wallet-status")
	require.Error(t, err)

	_, err = execute(t, "wallet-status", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid operation id")
}

func TestTrustline_ValidatesInput(t *testing.T) {
	t.Setenv("HOLDER_SEED", "")
	_, err := execute(t, "trustline", "--currency", "BRLX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HOLDER_SEED")

	t.Setenv("HOLDER_SEED", "sEdSomething")
	_, err = execute(t, "trustline", "--currency", "BRLX", "--limit", "-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --limit")
}

func TestOfflineEngine_PropagatesConfigErrors(t *testing.T) {
	opts := &RootOptions{
		Format: "text",
		LoadConfig: func(ctx context.Context) (*config.Config, error) {
			return nil, errors.New("XRPL_ISSUER_SEED: secret not found")
		},
	}

	_, err := offlineEngine(context.Background(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret not found")
}
