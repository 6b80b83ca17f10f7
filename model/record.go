package model

// Record holds the three text fields of a retrieved email that are scanned
// for addresses. It is produced by a mailbox source and never mutated.
type Record struct {
	Sender  string
	Subject string
	Body    string
}

// Envelope wraps a record alongside an optional error encountered while
// retrieving or decoding the message.
type Envelope struct {
	Record Record
	Err    error
}
