package models

// MessagePage is one page of messages, newest first. The API serves
// hydra-style collections.
type MessagePage struct {
	Messages   []Message `json:"hydra:member"`
	TotalItems int       `json:"hydra:totalItems"`
}

// DomainPage is the list of available domains.
type DomainPage struct {
	Domains    []Domain `json:"hydra:member"`
	TotalItems int      `json:"hydra:totalItems"`
}

// Source is the raw RFC 5322 source of a message.
type Source struct {
	ID          string `json:"id"`
	DownloadURL string `json:"downloadUrl"`
	Data        string `json:"data"`
}
