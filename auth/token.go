package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// TokenRecord is the on-disk shape of token.json. expiry_date is in Unix
// milliseconds; zero means no expiry was reported.
type TokenRecord struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiryDate   int64  `json:"expiry_date,omitempty"`
}

func NewTokenRecord(tok *oauth2.Token) TokenRecord {
	rec := TokenRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		rec.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		rec.ExpiryDate = tok.Expiry.UnixMilli()
	}
	return rec
}

func (r TokenRecord) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
	}
	if r.ExpiryDate != 0 {
		tok.Expiry = time.UnixMilli(r.ExpiryDate)
	}
	if r.Scope != "" {
		tok = tok.WithExtra(map[string]interface{}{"scope": r.Scope})
	}
	return tok
}

// LoadToken reads a token record. Freshness is not checked.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rec TokenRecord
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return nil, fmt.Errorf("unable to decode token file %s: %w", path, err)
	}
	return rec.Token(), nil
}

// SaveToken writes the token record unencrypted with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(NewTokenRecord(tok)); err != nil {
		return fmt.Errorf("unable to write oauth token: %w", err)
	}
	return nil
}
