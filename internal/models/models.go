package models

import "strings"

// PlaceholderLogo is the image used for parties registered without a logo
const PlaceholderLogo = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAGQAAABkCAQAAADa613fAAAAaElEQVR42u3PQREAAAgDoC2G/Yt62e20IIDz9wYBAgQIECBAgAABAgQIECBAgAABAgQIECBAgAABAgQIECBAgAABAgQIECBAgAABAgQIECBAgAABAgQIECBAgAABAgQIECBAgAABAgQIECBAgMDbA3cAAR2gLdJPAAAAAElFTSuQmCC"

// PlayerDetails are the voter details cached for a voting ID
type PlayerDetails struct {
	GameEdition string `json:"gameEdition"`
	PlayerName  string `json:"playerName"`
	RealName    string `json:"realName,omitempty"`
	Contact     string `json:"discordInsta,omitempty"` // Discord or Instagram handle
}

// HasPlayer reports whether an in-game player name was given
func (p PlayerDetails) HasPlayer() bool {
	return strings.TrimSpace(p.PlayerName) != ""
}

// CandidateSession is the logged-in candidate as cached in the session.
// It never carries the password.
type CandidateSession struct {
	CandidateName string `json:"candidateName"`
	PartyName     string `json:"partyName"`
	PartySymbol   string `json:"partyChinn"`
	PartyLogo     string `json:"partyLogo"`
}

// Party is a registered party as shown to voters
type Party struct {
	PartyName     string `json:"partyName"`
	CandidateName string `json:"candidateName"`
	PartySymbol   string `json:"partySymbol"`
	PartyLogo     string `json:"partyLogo"`
}

// HasLogo reports whether the party uploaded its own logo
func (p Party) HasLogo() bool {
	return p.PartyLogo != "" && p.PartyLogo != PlaceholderLogo
}

// LogoOrPlaceholder returns the logo to display
func (p Party) LogoOrPlaceholder() string {
	if p.PartyLogo == "" {
		return PlaceholderLogo
	}
	return p.PartyLogo
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
