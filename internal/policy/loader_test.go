package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysweep/skysweep/internal/domain"
)

func TestDefaultPolicy(t *testing.T) {
	p := Default()

	assert.Equal(t, 0.45, p.Weights.Price)
	assert.Equal(t, 0.3, p.Weights.Duration)
	assert.Equal(t, 0.15, p.Weights.Transfers)
	assert.Equal(t, 0.1, p.Weights.ConnectionRisk)
	assert.Equal(t, 2, p.Limits.MaxTransfersTotal)
	assert.Equal(t, domain.CriterionPrice, p.DominantCriterion())
}

func TestLoadFileEmptyPathReturnsDefault(t *testing.T) {
	p, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestLoadFileMissingPath(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileParsing(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, p domain.Policy)
	}{
		{
			name: "full document",
			content: `{
				"objectives": {"weights": {"price": 1, "duration": 0.5, "transfers": 0.25, "connection_risk": 0.1}},
				"defaults": {"max_transfers_total": 3}
			}`,
			check: func(t *testing.T, p domain.Policy) {
				assert.Equal(t, 1.0, p.Weights.Price)
				assert.Equal(t, 3, p.Limits.MaxTransfersTotal)
			},
		},
		{
			name: "missing limit falls back",
			content: `{
				"objectives": {"weights": {"price": 1}}
			}`,
			check: func(t *testing.T, p domain.Policy) {
				assert.Equal(t, fallbackMaxTransfers, p.Limits.MaxTransfersTotal)
			},
		},
		{
			name: "negative weight clamps to zero",
			content: `{
				"objectives": {"weights": {"price": 1, "duration": -0.5}}
			}`,
			check: func(t *testing.T, p domain.Policy) {
				assert.Equal(t, 0.0, p.Weights.Duration)
			},
		},
		{
			name: "unknown weight keys are ignored",
			content: `{
				"objectives": {"weights": {"price": 1, "carbon": 0.9}}
			}`,
			check: func(t *testing.T, p domain.Policy) {
				assert.Equal(t, 1.0, p.Weights.Price)
				assert.Equal(t, 0.0, p.Weights.ConnectionRisk)
			},
		},
		{
			name:    "zero transfers limit is allowed",
			content: `{"objectives": {"weights": {"price": 1}}, "defaults": {"max_transfers_total": 0}}`,
			check: func(t *testing.T, p domain.Policy) {
				assert.Equal(t, 0, p.Limits.MaxTransfersTotal)
			},
		},
		{
			name:    "negative transfers limit rejected",
			content: `{"objectives": {"weights": {"price": 1}}, "defaults": {"max_transfers_total": -1}}`,
			wantErr: true,
		},
		{
			name:    "all weights zero rejected",
			content: `{"objectives": {"weights": {}}}`,
			wantErr: true,
		},
		{
			name:    "invalid json rejected",
			content: `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadFile(writePolicy(t, tt.content))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}
