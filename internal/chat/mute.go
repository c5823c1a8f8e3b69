package chat

// MuteLevel tells Chat what a Participant may currently emit. Reason
// strings live on the deny variants so the enforcement point never needs a
// side table (spec.md §9).
type MuteLevel struct {
	kind   muteKind
	reason string
}

type muteKind int

const (
	muteAllowAll muteKind = iota
	muteDenyPublicOnly
	muteDenyAll
)

// AllowAll permits both public and private chat.
func AllowAll() MuteLevel { return MuteLevel{kind: muteAllowAll} }

// DenyPublicOnly blocks public chat; private chat is still allowed.
func DenyPublicOnly(reason string) MuteLevel {
	return MuteLevel{kind: muteDenyPublicOnly, reason: reason}
}

// DenyAll blocks both public and private chat.
func DenyAll(reason string) MuteLevel {
	return MuteLevel{kind: muteDenyAll, reason: reason}
}

func (m MuteLevel) publicAllowed() bool  { return m.kind == muteAllowAll }
func (m MuteLevel) privateAllowed() bool { return m.kind != muteDenyAll }
func (m MuteLevel) reasonText() string   { return m.reason }
