// Package message renders the heterogeneous payloads of backup chat rows
// as short human-readable text.
package message

// Wire type codes of the Type column.
const (
	TypeText     = 1
	TypeImage    = 3
	TypeVoice    = 34
	TypeVideo    = 43
	TypeSticker  = 47
	TypeLocation = 48
	TypeShare    = 49
	TypeSystem   = 10000
	TypeRecall   = 10002
)

// Kind is the closed set of message categories the formatter knows.
type Kind int

const (
	KindOther Kind = iota
	KindText
	KindImage
	KindVoice
	KindVideo
	KindSticker
	KindLocation
	KindShare
	KindSystem
	KindRecall
)

var kindNames = [...]string{
	KindOther:    "other",
	KindText:     "text",
	KindImage:    "image",
	KindVoice:    "voice",
	KindVideo:    "video",
	KindSticker:  "sticker",
	KindLocation: "location",
	KindShare:    "share",
	KindSystem:   "system",
	KindRecall:   "recall",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "other"
	}
	return kindNames[k]
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// Classify maps a wire type code to its Kind.
func Classify(typ int) Kind {
	switch typ {
	case TypeText:
		return KindText
	case TypeImage:
		return KindImage
	case TypeVoice:
		return KindVoice
	case TypeVideo:
		return KindVideo
	case TypeSticker:
		return KindSticker
	case TypeLocation:
		return KindLocation
	case TypeShare:
		return KindShare
	case TypeSystem:
		return KindSystem
	case TypeRecall:
		return KindRecall
	default:
		return KindOther
	}
}
