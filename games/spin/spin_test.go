package spin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	return &Handler{
		escalations: make(map[string]*escalation),
		generations: make(map[string]int),
	}
}

func TestTakeEscalationConsumesOnce(t *testing.T) {
	h := newTestHandler()
	h.escalations["tok"] = &escalation{Token: "tok", GuildID: "g", UserID: "winner", GrantedAt: time.Now()}

	esc, err := h.takeEscalation("tok", "winner")
	require.NoError(t, err)
	assert.Equal(t, "winner", esc.UserID)

	_, err = h.takeEscalation("tok", "winner")
	assert.ErrorIs(t, err, errStaleWindow)
}

func TestTakeEscalationRejectsWrongActorWithoutConsuming(t *testing.T) {
	h := newTestHandler()
	h.escalations["tok"] = &escalation{Token: "tok", GuildID: "g", UserID: "winner", GrantedAt: time.Now()}

	_, err := h.takeEscalation("tok", "intruder")
	assert.ErrorIs(t, err, errWrongActor)

	// The window survives a hijack attempt.
	esc, err := h.takeEscalation("tok", "winner")
	require.NoError(t, err)
	assert.Equal(t, "tok", esc.Token)
}

func TestTakeEscalationUnknownToken(t *testing.T) {
	h := newTestHandler()
	_, err := h.takeEscalation("missing", "anyone")
	assert.ErrorIs(t, err, errStaleWindow)
}

func TestGenerationSupersession(t *testing.T) {
	h := newTestHandler()
	key := "g:u"

	first := h.bumpGeneration(key)
	assert.Equal(t, 1, first)

	// A later escalation invalidates the earlier revocation generation.
	second := h.bumpGeneration(key)
	assert.Equal(t, 2, second)
	assert.NotEqual(t, first, h.currentGeneration(key))
	assert.Equal(t, second, h.currentGeneration(key))
}

func TestGenerationsPerMember(t *testing.T) {
	h := newTestHandler()
	h.bumpGeneration("g:a")
	h.bumpGeneration("g:a")
	h.bumpGeneration("g:b")

	assert.Equal(t, 2, h.currentGeneration("g:a"))
	assert.Equal(t, 1, h.currentGeneration("g:b"))
	assert.Equal(t, 0, h.currentGeneration("g2:a"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1 day", formatDuration(24*time.Hour))
	assert.Equal(t, "7 days", formatDuration(7*24*time.Hour))
	assert.Equal(t, "1m0s", formatDuration(time.Minute))
}
