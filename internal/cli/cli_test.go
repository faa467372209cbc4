package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/partnerdesk/platform/internal/auth"
	"github.com/partnerdesk/platform/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tiersYAML = `tiers:
  - name: base
    min_clients: 0
  - name: bronze
    min_clients: 3
  - name: silver
    min_clients: 5
  - name: gold
    min_clients: 10
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func snapshotWithQualifying(n int) string {
	var b strings.Builder
	b.WriteString(`{"partner_id":"p-1","clients":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		id := uuid.NewString()
		b.WriteString(`{"id":"` + id + `","payments":[{"id":"pay-` + id + `","amount":"12.00","commissionAmount":"1.20","status":"completed"}]}`)
	}
	b.WriteString(`]}`)
	return b.String()
}

func TestEvaluateCommand(t *testing.T) {
	tiers := writeFile(t, "tiers.yaml", tiersYAML)
	snap := writeFile(t, "snap.json", snapshotWithQualifying(5))

	out, err := execute(t, "", "evaluate", "--snapshot", snap, "--tiers", tiers)
	require.NoError(t, err)

	var eval service.Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &eval))
	assert.Equal(t, "silver", eval.Level.Tier)
	assert.Equal(t, 5, eval.Level.QualifyingClientCount)
	assert.Equal(t, int64(600), eval.Level.TotalCommission)
	assert.Equal(t, "gold", eval.Progress.NextTier)
}

func TestEvaluateCommand_Stdin(t *testing.T) {
	tiers := writeFile(t, "tiers.yaml", tiersYAML)

	out, err := execute(t, `{"clients":[]}`, "evaluate", "--snapshot", "-", "--tiers", tiers)
	require.NoError(t, err)
	assert.Contains(t, out, `"tier": "base"`)
}

func TestEvaluateCommand_InvalidSnapshot(t *testing.T) {
	tiers := writeFile(t, "tiers.yaml", tiersYAML)
	snap := writeFile(t, "snap.json", `{"clients":[{"id":"a","payments":[{"id":"x","status":"lost"}]}]}`)

	_, err := execute(t, "", "evaluate", "--snapshot", snap, "--tiers", tiers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}

func TestTiersCheckCommand(t *testing.T) {
	good := writeFile(t, "tiers.yaml", tiersYAML)
	out, err := execute(t, "", "tiers", "check", good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 4 tiers")

	bad := writeFile(t, "tiers.toml", "[[tiers]]\nname = \"bronze\"\nmin_clients = 3\n")
	_, err = execute(t, "", "tiers", "check", bad)
	assert.Error(t, err)
}

func TestRefreshCommand_RequiresTarget(t *testing.T) {
	_, err := execute(t, "", "refresh")
	assert.Error(t, err)

	_, err = execute(t, "", "refresh", "--all", "--partner", uuid.NewString())
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	secret := strings.Repeat("s", 32)
	t.Setenv("JWT_SECRET", secret)
	subject := uuid.New()

	out, err := execute(t, "", "token", "--realm", "partner", "--subject", subject.String())
	require.NoError(t, err)

	mgr := auth.NewJWTManager(secret, time.Hour, time.Hour)
	claims, err := mgr.ValidateTokenForRealm(strings.TrimSpace(out), auth.RealmPartner)
	require.NoError(t, err)
	assert.Equal(t, subject.String(), claims.Subject)
	assert.Empty(t, claims.Role)

	_, err = execute(t, "", "token", "--realm", "player", "--subject", subject.String())
	assert.Error(t, err)
}
