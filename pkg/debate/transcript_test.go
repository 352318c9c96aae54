package debate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_VisibleExcludesHiddenAndFinal(t *testing.T) {
	tr := NewTranscript("q")
	tr.append(Entry{Identity: "A", Role: RoleInitiator, Content: "one", Visible: true})
	tr.append(Entry{Identity: "B", Role: RoleCritic, Content: "two", Visible: false})
	tr.append(Entry{Identity: "A", Role: RoleFinal, Content: "fin", Visible: true})

	vis := tr.Visible()
	require.Len(t, vis, 1)
	assert.Equal(t, RoleInitiator, vis[0].Role)

	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, "q", tr.Query())
}

func TestTranscript_ContentFor(t *testing.T) {
	tr := NewTranscript("q")
	assert.Empty(t, tr.ContentFor(RoleInitiator))

	tr.append(Entry{Identity: "A", Role: RoleInitiator, Content: "answer", Visible: true, Elapsed: time.Second})
	assert.Equal(t, "answer", tr.ContentFor(RoleInitiator))
	assert.Empty(t, tr.ContentFor(RoleCritic))
}

func TestTranscript_EntriesIsACopy(t *testing.T) {
	tr := NewTranscript("q")
	tr.append(Entry{Identity: "A", Role: RoleInitiator, Content: "orig", Visible: true})

	got := tr.Entries()
	got[0].Content = "mutated"
	assert.Equal(t, "orig", tr.Entries()[0].Content)
}
