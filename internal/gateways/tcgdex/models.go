package tcgdex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// BriefCard is an item of the card list endpoint.
type BriefCard struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image,omitempty"`
}

// Card is the card detail payload, trimmed to the fields the catalog uses.
type Card struct {
	ID          string    `json:"id"`
	LocalID     string    `json:"localId"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	Rarity      string    `json:"rarity,omitempty"`
	Description string    `json:"description,omitempty"`
	Types       []string  `json:"types,omitempty"`
	Set         SetBrief  `json:"set"`
	Attacks     []Attack  `json:"attacks,omitempty"`
	Abilities   []Ability `json:"abilities,omitempty"`
}

type SetBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Attack struct {
	Name   string     `json:"name"`
	Damage FlexString `json:"damage,omitempty"`
	Effect string     `json:"effect,omitempty"`
}

type Ability struct {
	Type   string `json:"type,omitempty"`
	Name   string `json:"name"`
	Effect string `json:"effect,omitempty"`
}

// FlexString decodes a JSON string or number. Attack damage arrives as 30 on
// some cards and "30+" on others.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("damage must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// NotFoundError is returned for a 404 from the API.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tcgdex: not found: %s", e.URL)
}
