package service

// Capability is the kind of access a caller asks for.
type Capability int

const (
	// CapabilityOwner grants access only to the entity's owner.
	CapabilityOwner Capability = iota
	// CapabilityInternal is used by system-initiated operations (admin
	// resyncs) that act on behalf of no particular user.
	CapabilityInternal
)

// Owned is implemented by every user-owned domain entity.
type Owned interface {
	OwnerID() int64
}

// Authorize is the single ownership check applied before any workflow writes.
func Authorize(entity Owned, userID int64, capability Capability) error {
	switch capability {
	case CapabilityInternal:
		return nil
	case CapabilityOwner:
		if userID > 0 && entity.OwnerID() == userID {
			return nil
		}
	}
	return ErrAccessDenied
}
