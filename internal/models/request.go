package models

import "time"

// RequestType names one of the closed set of request categories.
type RequestType string

const (
	RequestSwapSection       RequestType = "Swap Section"
	RequestDeadlineExtension RequestType = "Deadline Extension"
)

// Valid reports whether the type is one of the closed set.
func (t RequestType) Valid() bool {
	switch t {
	case RequestSwapSection, RequestDeadlineExtension:
		return true
	}
	return false
}

// Proof is one supporting document attached to a request.
type Proof struct {
	Name    string `bson:"name" json:"name" binding:"required"`
	Size    int64  `bson:"size" json:"size"`
	Content string `bson:"content" json:"content"`
}

// MaxProofFiles and MaxProofFileSize bound request attachments.
const (
	MaxProofFiles    = 4
	MaxProofFileSize = 2 * 1024 * 1024
)

// RequestDetails carries the free-text portion of a request.
type RequestDetails struct {
	Reason string  `bson:"reason" json:"reason" binding:"required"`
	Proof  []Proof `bson:"proof,omitempty" json:"proof,omitempty"`
}

// Decision is the instructor's verdict on a request.
type Decision string

const (
	DecisionApprove Decision = "Approve"
	DecisionReject  Decision = "Reject"
)

// Valid reports whether the decision is Approve or Reject.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Response is embedded in a request once attached. Immutable after that.
type Response struct {
	From      string    `bson:"from" json:"from"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Decision  Decision  `bson:"decision" json:"decision"`
	Remarks   string    `bson:"remarks" json:"remarks"`
}

// Request is the stored request document. Everything except Response is
// immutable once created. Metadata is the type-specific payload and is
// carried opaquely; its shape is a concern of the validation layer.
type Request struct {
	ID        string                 `bson:"id" json:"id"`
	From      string                 `bson:"from" json:"from"`
	Class     Class                  `bson:"class" json:"class"`
	Type      RequestType            `bson:"type" json:"type"`
	Metadata  map[string]interface{} `bson:"metadata" json:"metadata"`
	Details   RequestDetails         `bson:"details" json:"details"`
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
	Response  *Response              `bson:"response" json:"response"`
}

// Resolved reports whether a response has been attached.
func (r *Request) Resolved() bool {
	return r.Response != nil
}
