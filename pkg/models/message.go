package models

import "time"

// Address is a name/address pair as it appears in from/to/cc lists.
type Address struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Attachment describes a file attached to a message.
type Attachment struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	ContentType      string `json:"contentType"`
	Disposition      string `json:"disposition"`
	TransferEncoding string `json:"transferEncoding"`
	Related          bool   `json:"related"`
	Size             int64  `json:"size"`
	DownloadURL      string `json:"downloadUrl"`
}

// Message is a mail item as returned by the mail.tm API. List responses omit
// the body fields; GET /messages/{id} fills them in. The watcher treats a
// Message as an immutable snapshot and only ever compares IDs.
type Message struct {
	ID             string       `json:"id"`
	AccountID      string       `json:"accountId"`
	MsgID          string       `json:"msgid"`
	From           *Address     `json:"from"`
	To             []Address    `json:"to"`
	CC             []string     `json:"cc"`
	BCC            []string     `json:"bcc"`
	Subject        string       `json:"subject"`
	Intro          string       `json:"intro"`
	Seen           bool         `json:"seen"`
	Flagged        bool         `json:"flagged"`
	IsDeleted      bool         `json:"isDeleted"`
	Verifications  []string     `json:"verifications"`
	Retention      bool         `json:"retention"`
	RetentionDate  *time.Time   `json:"retentionDate"`
	Text           string       `json:"text"`
	HTML           []string     `json:"html"`
	HasAttachments bool         `json:"hasAttachments"`
	Attachments    []Attachment `json:"attachments"`
	Size           int64        `json:"size"`
	DownloadURL    string       `json:"downloadUrl"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// FromAddress returns the sender address, or "" when the header is missing.
func (m *Message) FromAddress() string {
	if m.From == nil {
		return ""
	}
	return m.From.Address
}

// FromName returns the sender display name, or "" when the header is missing.
func (m *Message) FromName() string {
	if m.From == nil {
		return ""
	}
	return m.From.Name
}
