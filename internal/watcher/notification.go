package watcher

// Kind classifies a raw filesystem change notification
type Kind int

const (
	KindOther Kind = iota
	KindDataModified
	KindCreate
	KindRemove
	KindRename
	KindMetadata
)

func (k Kind) String() string {
	switch k {
	case KindDataModified:
		return "data_modified"
	case KindCreate:
		return "create"
	case KindRemove:
		return "remove"
	case KindRename:
		return "rename"
	case KindMetadata:
		return "metadata"
	default:
		return "other"
	}
}

// Notification is one raw change notification. Paths are unordered and may repeat
// across notifications.
type Notification struct {
	Kind  Kind
	Paths []string
}
