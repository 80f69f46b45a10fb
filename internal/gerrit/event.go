package gerrit

// EventType names a stream-events notification kind. The values match the
// "type" field on the wire.
type EventType string

const (
	// TypePatchsetCreated is emitted when a new patchset is uploaded
	TypePatchsetCreated EventType = "patchset-created"
	// TypeChangeAbandoned is emitted when a change is abandoned
	TypeChangeAbandoned EventType = "change-abandoned"
	// TypeChangeMerged is emitted when a change is submitted to its branch
	TypeChangeMerged EventType = "change-merged"
	// TypeCommentAdded is emitted when a review comment or score is posted
	TypeCommentAdded EventType = "comment-added"
	// TypeRefUpdated is emitted when a ref changes outside review
	TypeRefUpdated EventType = "ref-updated"
)

// Event is one notification from the review system. Events carry identity
// equality (two notifications for the same change revision are the same
// event) and a listener registry for lifecycle callbacks.
type Event interface {
	Type() EventType
	// Equals reports identity equality with another event.
	Equals(other Event) bool
	AddListener(l Listener)
	RemoveListener(l Listener)
}

// ChangeEvent is implemented by events scoped to a change revision; the
// trigger scan only evaluates these.
type ChangeEvent interface {
	Event
	ChangeAttr() Change
	PatchSetAttr() PatchSet
}

// changeBased carries the shared identity and listener machinery for
// change-scoped events. Identity is the change number plus the patchset
// number and revision.
type changeBased struct {
	Lifecycle `json:"-"`
	Change    Change   `json:"change"`
	PatchSet  PatchSet `json:"patchSet"`
}

// ChangeAttr returns the change-level attributes.
func (e *changeBased) ChangeAttr() Change { return e.Change }

// PatchSetAttr returns the patchset-level attributes.
func (e *changeBased) PatchSetAttr() PatchSet { return e.PatchSet }

func (e *changeBased) sameRevision(other ChangeEvent) bool {
	oc, op := other.ChangeAttr(), other.PatchSetAttr()
	return e.Change.Number == oc.Number &&
		e.PatchSet.Number == op.Number &&
		e.PatchSet.Revision == op.Revision
}

// PatchsetCreated is the notification that a new patchset was uploaded. It is
// the only event kind the trigger scan acts on by default.
type PatchsetCreated struct {
	changeBased
	Uploader Account `json:"uploader"`
}

// Type returns TypePatchsetCreated.
func (e *PatchsetCreated) Type() EventType { return TypePatchsetCreated }

// Equals reports whether other identifies the same change revision.
func (e *PatchsetCreated) Equals(other Event) bool {
	o, ok := other.(*PatchsetCreated)
	return ok && e.sameRevision(o)
}

// ChangeAbandoned is the notification that a change was abandoned.
type ChangeAbandoned struct {
	changeBased
	Abandoner Account `json:"abandoner"`
}

// Type returns TypeChangeAbandoned.
func (e *ChangeAbandoned) Type() EventType { return TypeChangeAbandoned }

// Equals reports whether other identifies the same change revision.
func (e *ChangeAbandoned) Equals(other Event) bool {
	o, ok := other.(*ChangeAbandoned)
	return ok && e.sameRevision(o)
}

// ChangeMerged is the notification that a change was submitted to its branch.
type ChangeMerged struct {
	changeBased
	Submitter Account `json:"submitter"`
}

// Type returns TypeChangeMerged.
func (e *ChangeMerged) Type() EventType { return TypeChangeMerged }

// Equals reports whether other identifies the same change revision.
func (e *ChangeMerged) Equals(other Event) bool {
	o, ok := other.(*ChangeMerged)
	return ok && e.sameRevision(o)
}

// CommentAdded is the notification that a review comment or score was posted.
type CommentAdded struct {
	changeBased
	Author    Account    `json:"author"`
	Comment   string     `json:"comment"`
	Approvals []Approval `json:"approvals"`
}

// Type returns TypeCommentAdded.
func (e *CommentAdded) Type() EventType { return TypeCommentAdded }

// Equals reports whether other identifies the same change revision.
func (e *CommentAdded) Equals(other Event) bool {
	o, ok := other.(*CommentAdded)
	return ok && e.sameRevision(o)
}

// RefUpdated is the notification that a ref moved outside of review.
type RefUpdated struct {
	Lifecycle `json:"-"`
	Submitter Account   `json:"submitter"`
	RefUpdate RefUpdate `json:"refUpdate"`
}

// Type returns TypeRefUpdated.
func (e *RefUpdated) Type() EventType { return TypeRefUpdated }

// Equals reports whether other identifies the same ref transition.
func (e *RefUpdated) Equals(other Event) bool {
	o, ok := other.(*RefUpdated)
	return ok && e.RefUpdate == o.RefUpdate
}
