package vcban

import (
	"errors"
	"testing"
	"time"

	"modbot/model"
	"modbot/restriction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *model.Config {
	return &model.Config{
		Env: model.Env{OwnerUserIDs: []string{"host"}},
		ServerConfigs: map[string]model.GuildConfig{
			"g1": {
				GuildID:     "g1",
				Enable:      true,
				HostRoleIDs: []string{"hostRole"},
				ModRoleIDs:  []string{"modRole"},
				VCBan:       model.VCBanConfig{ExplicitChannel: true, Colocated: true},
			},
		},
	}
}

func newCommander(cfg *model.Config) (*Commander, *restriction.Store, *fakeMover, *fakeRecorder) {
	store := restriction.NewStore()
	mover := &fakeMover{}
	rec := &fakeRecorder{}
	return NewCommander(store, mover, rec, func() *model.Config { return cfg }), store, mover, rec
}

func TestColocatedRestrictsAndDisconnects(t *testing.T) {
	c, store, mover, rec := newCommander(testConfig())

	res, err := c.Restrict(Invocation{
		GuildID:         "g1",
		CallerID:        "mod1",
		CallerRoles:     []string{"modRole"},
		CallerChannelID: "chanX",
		TargetID:        "userA",
		TargetChannelID: "chanX",
		At:              now,
	})
	require.NoError(t, err)
	assert.Equal(t, ModeColocated, res.Mode)
	assert.True(t, res.Disconnected)
	assert.Equal(t, now.Add(48*time.Hour), res.Restriction.ExpiresAt)
	assert.Equal(t, "chanX", res.Restriction.ChannelID)

	assert.True(t, store.IsActive("userA", "chanX", now.Add(47*time.Hour)))
	assert.False(t, store.IsActive("userA", "chanX", now.Add(48*time.Hour)))
	require.Equal(t, 1, mover.count())
	assert.Nil(t, mover.calls[0].channelID)

	require.Len(t, rec.actions, 1)
	assert.Equal(t, model.ActionVCBan, rec.actions[0].Action)
	assert.Equal(t, "mod1", rec.actions[0].ModeratorID)
}

func TestColocatedTargetElsewhereNotDisconnected(t *testing.T) {
	c, store, mover, _ := newCommander(testConfig())

	res, err := c.Restrict(Invocation{
		GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"},
		CallerChannelID: "chanX", TargetID: "userA", TargetChannelID: "chanY", At: now,
	})
	require.NoError(t, err)
	assert.False(t, res.Disconnected)
	assert.Zero(t, mover.count())
	assert.True(t, store.IsActive("userA", "chanX", now))
}

func TestColocatedDisconnectFailureKeepsRestriction(t *testing.T) {
	c, store, mover, _ := newCommander(testConfig())
	mover.err = errors.New("boom")

	res, err := c.Restrict(Invocation{
		GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"},
		CallerChannelID: "chanX", TargetID: "userA", TargetChannelID: "chanX", At: now,
	})
	require.NoError(t, err)
	assert.False(t, res.Disconnected)
	assert.True(t, store.IsActive("userA", "chanX", now))
}

func TestExplicitChannelByOwner(t *testing.T) {
	c, store, mover, _ := newCommander(testConfig())

	res, err := c.Restrict(Invocation{
		GuildID: "g1", CallerID: "host", TargetID: "userA",
		ChannelID: "chanX", ChannelIsVoice: true, At: now,
	})
	require.NoError(t, err)
	assert.Equal(t, ModeExplicit, res.Mode)
	assert.True(t, store.IsActive("userA", "chanX", now))
	assert.Zero(t, mover.count(), "explicit mode waits for the next join")
}

func TestExplicitChannelByGuildOwner(t *testing.T) {
	c, store, _, _ := newCommander(testConfig())

	_, err := c.Restrict(Invocation{
		GuildID: "g1", GuildOwnerID: "boss", CallerID: "boss", TargetID: "userA",
		ChannelID: "chanX", ChannelIsVoice: true, At: now,
	})
	require.NoError(t, err)
	assert.True(t, store.IsActive("userA", "chanX", now))
}

func TestRestrictRejections(t *testing.T) {
	disabled := testConfig()
	g := disabled.ServerConfigs["g1"]
	g.VCBan = model.VCBanConfig{}
	disabled.ServerConfigs["g1"] = g

	tests := []struct {
		name string
		cfg  *model.Config
		inv  Invocation
		want error
	}{
		{
			name: "unauthorized caller",
			inv:  Invocation{GuildID: "g1", CallerID: "rando", CallerRoles: []string{"other"}, CallerChannelID: "chanX", TargetID: "userA"},
			want: ErrUnauthorized,
		},
		{
			name: "caller not in voice",
			inv:  Invocation{GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"}, TargetID: "userA"},
			want: ErrCallerNotInVoice,
		},
		{
			name: "missing caller",
			inv:  Invocation{GuildID: "g1", CallerChannelID: "chanX", TargetID: "userA"},
			want: ErrCallerMissing,
		},
		{
			name: "missing target",
			inv:  Invocation{GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"}, CallerChannelID: "chanX"},
			want: ErrTargetMissing,
		},
		{
			name: "explicit by moderator",
			inv:  Invocation{GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"hostRole"}, TargetID: "userA", ChannelID: "chanX", ChannelIsVoice: true},
			want: ErrNotOwner,
		},
		{
			name: "explicit text channel",
			inv:  Invocation{GuildID: "g1", CallerID: "host", TargetID: "userA", ChannelID: "chanX"},
			want: ErrNotVoiceChannel,
		},
		{
			name: "unknown guild",
			inv:  Invocation{GuildID: "g2", CallerID: "host", TargetID: "userA", CallerChannelID: "chanX"},
			want: ErrGuildNotConfigured,
		},
		{
			name: "colocated disabled",
			cfg:  disabled,
			inv:  Invocation{GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"}, CallerChannelID: "chanX", TargetID: "userA"},
			want: ErrModeDisabled,
		},
		{
			name: "explicit disabled",
			cfg:  disabled,
			inv:  Invocation{GuildID: "g1", CallerID: "host", TargetID: "userA", ChannelID: "chanX", ChannelIsVoice: true},
			want: ErrModeDisabled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if cfg == nil {
				cfg = testConfig()
			}
			c, store, mover, rec := newCommander(cfg)
			tt.inv.At = now

			_, err := c.Restrict(tt.inv)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, store.Len(), "no entry created")
			assert.Zero(t, mover.count())
			assert.Empty(t, rec.actions)
			assert.NotEqual(t, "Something went wrong.", rejectionText(err))
		})
	}
}

func TestOverwriteRenewsWindow(t *testing.T) {
	c, store, _, _ := newCommander(testConfig())
	inv := Invocation{GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"}, CallerChannelID: "chanX", TargetID: "userA", At: now}

	_, err := c.Restrict(inv)
	require.NoError(t, err)
	inv.At = now.Add(24 * time.Hour)
	_, err = c.Restrict(inv)
	require.NoError(t, err)

	assert.True(t, store.IsActive("userA", "chanX", now.Add(60*time.Hour)))
	assert.Equal(t, 1, store.Len())
}

func TestRelease(t *testing.T) {
	c, store, _, rec := newCommander(testConfig())
	store.Put("userA", "chanX", now.Add(restriction.Duration))

	released, err := c.Release(Invocation{GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"}, TargetID: "userA", ChannelID: "chanX", At: now})
	require.NoError(t, err)
	assert.True(t, released)
	assert.False(t, store.IsActive("userA", "chanX", now))
	require.Len(t, rec.actions, 1)
	assert.Equal(t, model.ActionVCUnban, rec.actions[0].Action)

	released, err = c.Release(Invocation{GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"}, TargetID: "userA", CallerChannelID: "chanX", At: now})
	require.NoError(t, err)
	assert.False(t, released)
}

func TestReleaseRejections(t *testing.T) {
	c, store, _, _ := newCommander(testConfig())
	store.Put("userA", "chanX", now.Add(restriction.Duration))

	_, err := c.Release(Invocation{GuildID: "g1", CallerID: "rando", TargetID: "userA", ChannelID: "chanX"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Release(Invocation{GuildID: "g1", CallerID: "mod1", CallerRoles: []string{"modRole"}, TargetID: "userA"})
	assert.ErrorIs(t, err, ErrCallerNotInVoice)

	assert.Equal(t, 1, store.Len())
}

func TestConfirmation(t *testing.T) {
	msg := confirmation(Result{Restriction: model.Restriction{SubjectID: "1", ChannelID: "2", ExpiresAt: now}})
	assert.Equal(t, "<@1> will be auto-kicked from voice channel <#2> for the next 48 hours.", msg)
}
