package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusEmbed(t *testing.T) {
	embed := statusEmbed(botStats{
		CPUCount:      4,
		Commands:      12,
		Latency:       42 * time.Millisecond,
		Restrictions:  3,
		LedgerEntries: 17,
		Uptime:        90*time.Minute + 500*time.Millisecond,
	}, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))

	values := make(map[string]string)
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "unknown", values["💻 OS"])
	assert.Equal(t, "4", values["🔼 CPUs"])
	assert.Equal(t, "42ms", values["⏱️ Gateway latency"])
	assert.Equal(t, "12", values["🧩 Commands"])
	assert.Equal(t, "3", values["🔇 Active voice restrictions"])
	assert.Equal(t, "17", values["📒 Ledger entries"])
	assert.Equal(t, "1h30m0s", values["⌛ Uptime"])
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "System monitor · 09:30", embed.Footer.Text)
}
