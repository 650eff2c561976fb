package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() EmailData {
	return EmailData{
		RecipientName: "bob",
		Email:         "bob@example.com",
		AppName:       "gather-api",
		EventTitle:    "Board Game Night",
		EventDate:     "2026-04-18",
		EventTime:     "19:00",
		Location:      "Community hall",
		OrganizerName: "alice",
	}
}

func TestRenderInvitation(t *testing.T) {
	subject, text, html, err := Render(Invitation, sampleData())
	require.NoError(t, err)

	assert.Contains(t, subject, "Board Game Night")
	assert.Contains(t, subject, "alice")
	assert.Contains(t, text, "bob")
	assert.Contains(t, text, "2026-04-18")
	assert.Contains(t, html, "Board Game Night")
}

func TestRenderAllTemplates(t *testing.T) {
	for _, name := range []string{Invitation, Cancellation, Welcome} {
		subject, text, html, err := Render(name, sampleData())
		require.NoError(t, err, name)
		assert.NotEmpty(t, subject, name)
		assert.NotEmpty(t, text, name)
		assert.NotEmpty(t, html, name)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("newsletter", sampleData())
	assert.Error(t, err)
}

func TestRenderWorksWithJobData(t *testing.T) {
	// Services ship EmailData through the queue as a map.
	m := ToMap(sampleData())
	subject, _, _, err := Render(Cancellation, m)
	require.NoError(t, err)
	assert.Contains(t, subject, "Board Game Night")
}
