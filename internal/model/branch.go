package model

import "time"

// Branch represents a physical restaurant location.  Its time zone is the
// only source of local time for everything booked at the branch; local
// views of reservations are always derived through it.
//
// Fields:
//  ID          – primary key identifier.
//  CountryID   – country the branch operates in.
//  Name        – display name of the branch.
//  Address     – postal address.
//  TimeZone    – IANA zone name (e.g. America/Mexico_City).
//  OpeningHour – local hour of day the dining room opens (0-23).
//  ClosingHour – local hour of day it closes; a value at or below
//                OpeningHour means the service runs past midnight.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Branch struct {
	ID          uint64    `json:"id"`           // branches.id
	CountryID   uint64    `json:"country_id"`   // branches.country_id
	Name        string    `json:"name"`         // branches.name
	Address     string    `json:"address"`      // branches.address
	TimeZone    string    `json:"time_zone"`    // branches.time_zone
	OpeningHour int       `json:"opening_hour"` // branches.opening_hour
	ClosingHour int       `json:"closing_hour"` // branches.closing_hour
	CreatedAt   time.Time `json:"created_at"`   // branches.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // branches.updated_at
}
