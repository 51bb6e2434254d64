package domain

// MessageKind identifies the wire message types of §6.
type MessageKind uint8

const (
	MsgOrderSubmit MessageKind = 1
	MsgOrderCancel MessageKind = 2
	MsgMatchResult MessageKind = 3
	MsgEngineStatus MessageKind = 4
)

// CancelRequest is the decoded payload of an OrderCancel message.
type CancelRequest struct {
	ProductID uint16
	OrderID   uint64
}

// Inbound is the sum type the Ingress Receiver pushes onto the inbound
// queue and the Matcher drains (§4.2, §4.3). Exactly one of Order /
// Cancel is meaningful, selected by Kind.
type Inbound struct {
	Kind   MessageKind
	Order  Order
	Cancel CancelRequest
}
