// Package ipc lets gctlogin commands talk to a running tray process.
package ipc

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"
)

// SocketFileName is the socket created in the data directory by the tray.
const SocketFileName = "tray.sock"

// SocketPath returns the tray socket path inside dataDir.
func SocketPath(dataDir string) string {
	return filepath.Join(dataDir, SocketFileName)
}

// MessageType defines the type of IPC message.
type MessageType string

const (
	// Request types
	MessageTypeAccountsChanged MessageType = "accounts_changed"
	MessageTypeGetStatus       MessageType = "get_status"
	MessageTypeShutdown        MessageType = "shutdown"

	// Response types
	MessageTypeSuccess MessageType = "success"
	MessageTypeError   MessageType = "error"
)

// Message is one JSON-encoded IPC frame.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewMessage creates a new message with the given type and payload.
func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		var err error
		payloadBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}

	return &Message{
		ID:        generateMessageID(),
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

// DecodePayload decodes the message payload into target.
func (m *Message) DecodePayload(target interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, target)
}

// AccountsChangedNotice is the payload of accounts_changed.
type AccountsChangedNotice struct {
	// Active is the active account after the change, empty if none
	Active string `json:"active,omitempty"`
}

// StatusResponse is the payload for get_status responses.
type StatusResponse struct {
	PID           int       `json:"pid"`
	Uptime        int64     `json:"uptime_seconds"`
	AccountCount  int       `json:"account_count"`
	ActiveAccount string    `json:"active_account,omitempty"`
	LastRefresh   time.Time `json:"last_refresh"`
}

// ErrorResponse is the payload for error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var messageSeq atomic.Uint64

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	return time.Now().Format("20060102150405") + "-" + strconv.FormatUint(messageSeq.Add(1), 10)
}
