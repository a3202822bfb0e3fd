// Copyright (c) 2025 Bloomi
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model holds the data shapes exchanged with the Bloomi backend and
// persisted locally by the client.
package model

// Membership is the subscription tier reported by the backend.
type Membership string

const (
	MembershipFree  Membership = "FREE"
	MembershipTier1 Membership = "TIER1"
)

// User is the profile record returned by /auth/me and delivered by the login callback.
type User struct {
	ID         string     `json:"id" validate:"required"`
	Email      string     `json:"email" validate:"omitempty,email"`
	Name       string     `json:"name"`
	Picture    string     `json:"picture,omitempty"`
	Provider   string     `json:"provider"`
	Membership Membership `json:"membership" validate:"omitempty,oneof=FREE TIER1"`
}

// DisplayName returns the best human-readable identifier for the user.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}

// AuthResponse is the payload shape some auth endpoints wrap the profile in.
type AuthResponse struct {
	AccessToken string `json:"accessToken"`
	User        User   `json:"user"`
}
