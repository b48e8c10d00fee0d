package models

import "time"

// Account is a mail.tm account.
type Account struct {
	ID         string    `json:"id"`
	Address    string    `json:"address"`
	Quota      int64     `json:"quota"`
	Used       int64     `json:"used"`
	IsDisabled bool      `json:"isDisabled"`
	IsDeleted  bool      `json:"isDeleted"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Token is the bearer credential for an account, as returned by POST /token.
type Token struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}
