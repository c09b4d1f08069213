package bridge

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/io"
)

// Message is a cross-chain message of the bridge.
type Message byte

const (
	// Notify is a payload-free signal waking observers of the destination
	// chain. Handling it changes nothing, so duplicates and losses are safe.
	Notify Message = iota
)

// ErrUnknownMessage is returned for messages the bridge does not know.
var ErrUnknownMessage = errors.New("unknown message")

// String implements fmt.Stringer.
func (m Message) String() string {
	switch m {
	case Notify:
		return "Notify"
	default:
		return fmt.Sprintf("Message(%d)", byte(m))
	}
}

// EncodeBinary implements io.Serializable.
func (m Message) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(m))
}

// DecodeBinary implements io.Serializable.
func (m *Message) DecodeBinary(r *io.BinReader) {
	b := r.ReadB()
	if r.Err != nil {
		return
	}
	if Message(b) != Notify {
		r.Err = fmt.Errorf("%w: tag %d", ErrUnknownMessage, b)
		return
	}
	*m = Message(b)
}

// Bytes returns binary form of the message.
func (m Message) Bytes() ([]byte, error) {
	w := io.NewBufBinWriter()
	m.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// DecodeMessage decodes Message from its binary form.
func DecodeMessage(b []byte) (Message, error) {
	var m Message
	r := io.NewBinReaderFromBuf(b)
	m.DecodeBinary(r)
	if r.Err != nil {
		return 0, fmt.Errorf("decode message: %w", r.Err)
	}
	return m, nil
}
