package defs

// MessageKind tags every transfer made over a cipher connection
type MessageKind byte

// Message kinds, in protocol order
const (
	KindClientHello MessageKind = iota + 1
	KindServerHello
	KindReject
	KindSizeAnnounce
	KindRequestText
	KindText
	KindRequestKey
	KindKey
	KindResult
)

var kindNames = map[MessageKind]string{
	KindClientHello:  "ClientHello",
	KindServerHello:  "ServerHello",
	KindReject:       "Reject",
	KindSizeAnnounce: "SizeAnnounce",
	KindRequestText:  "RequestText",
	KindText:         "Text",
	KindRequestKey:   "RequestKey",
	KindKey:          "Key",
	KindResult:       "Result",
}

func (k MessageKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsToken reports whether the kind travels as a fixed literal
func (k MessageKind) IsToken() bool {
	switch k {
	case KindClientHello, KindServerHello, KindReject, KindRequestText, KindRequestKey:
		return true
	}
	return false
}
