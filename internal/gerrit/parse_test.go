package gerrit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patchsetCreatedJSON = `{
	"type": "patchset-created",
	"change": {
		"project": "platform/core",
		"branch": "main",
		"id": "I8f2a",
		"number": "4711",
		"subject": "Fix flaky retry",
		"owner": {"name": "Jane Dev", "email": "jane@example.com"},
		"url": "https://gerrit.example.com/4711"
	},
	"patchSet": {
		"number": "2",
		"revision": "deadbeef",
		"ref": "refs/changes/11/4711/2",
		"uploader": {"name": "Jane Dev", "email": "jane@example.com"}
	},
	"uploader": {"name": "Jane Dev", "email": "jane@example.com"}
}`

func TestParsePatchsetCreated(t *testing.T) {
	event, err := ParseEvent([]byte(patchsetCreatedJSON))
	require.NoError(t, err)

	pc, ok := event.(*PatchsetCreated)
	require.True(t, ok, "expected *PatchsetCreated, got %T", event)

	assert.Equal(t, TypePatchsetCreated, pc.Type())
	assert.Equal(t, "platform/core", pc.Change.Project)
	assert.Equal(t, "main", pc.Change.Branch)
	assert.Equal(t, "4711", pc.Change.Number)
	assert.Equal(t, "2", pc.PatchSet.Number)
	assert.Equal(t, "deadbeef", pc.PatchSet.Revision)
	assert.Equal(t, "jane@example.com", pc.Uploader.Email)
}

func TestParseOtherEventTypes(t *testing.T) {
	tests := []struct {
		name string
		line string
		want EventType
	}{
		{
			name: "change abandoned",
			line: `{"type":"change-abandoned","change":{"number":"1"},"patchSet":{"number":"1"},"abandoner":{"name":"x"}}`,
			want: TypeChangeAbandoned,
		},
		{
			name: "change merged",
			line: `{"type":"change-merged","change":{"number":"1"},"patchSet":{"number":"1"},"submitter":{"name":"x"}}`,
			want: TypeChangeMerged,
		},
		{
			name: "comment added",
			line: `{"type":"comment-added","change":{"number":"1"},"patchSet":{"number":"1"},"approvals":[{"type":"CRVW","value":"-1"}]}`,
			want: TypeCommentAdded,
		},
		{
			name: "ref updated",
			line: `{"type":"ref-updated","refUpdate":{"project":"p","refName":"refs/heads/main","oldRev":"a","newRev":"b"}}`,
			want: TypeRefUpdated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := ParseEvent([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.want, event.Type())
		})
	}
}

func TestParseCommentAddedApprovals(t *testing.T) {
	line := `{"type":"comment-added","change":{"number":"9"},"patchSet":{"number":"3"},"comment":"looks good","approvals":[{"type":"CRVW","value":"2"},{"type":"VRIF","value":"1"}]}`
	event, err := ParseEvent([]byte(line))
	require.NoError(t, err)

	ca := event.(*CommentAdded)
	assert.Equal(t, "looks good", ca.Comment)
	require.Len(t, ca.Approvals, 2)
	assert.Equal(t, Approval{Type: "CRVW", Value: "2"}, ca.Approvals[0])
}

func TestParseUnknownType(t *testing.T) {
	_, err := ParseEvent([]byte(`{"type":"reviewer-added"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEventType))
}

func TestParseMalformedLine(t *testing.T) {
	_, err := ParseEvent([]byte(`{`))
	assert.Error(t, err)
}

func TestPatchsetCreatedEquality(t *testing.T) {
	base := func() *PatchsetCreated {
		ev := &PatchsetCreated{}
		ev.Change = Change{Number: "4711"}
		ev.PatchSet = PatchSet{Number: "2", Revision: "deadbeef"}
		return ev
	}

	a, b := base(), base()
	assert.True(t, a.Equals(b))
	assert.True(t, b.Equals(a))

	c := base()
	c.PatchSet.Number = "3"
	assert.False(t, a.Equals(c))

	d := base()
	d.Change.Number = "4712"
	assert.False(t, a.Equals(d))

	// A different event kind for the same revision is a different identity.
	merged := &ChangeMerged{}
	merged.Change = Change{Number: "4711"}
	merged.PatchSet = PatchSet{Number: "2", Revision: "deadbeef"}
	assert.False(t, a.Equals(merged))
}
