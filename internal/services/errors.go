package services

import "fmt"

// Service errors. Each is rejected locally, before any request is sent.
var (
	ErrEmptyVotingID       = &ServiceError{Message: "Please enter your Voting ID."}
	ErrNotLoggedIn         = &ServiceError{Message: "Please log in with your Voting ID first."}
	ErrAlreadyVoted        = &ServiceError{Message: "This Voting ID has already been used. You cannot cast another vote."}
	ErrMissingDetails      = &ServiceError{Message: "Please enter your player details first in the \"Vote\" section."}
	ErrMissingPlayerName   = &ServiceError{Message: "Please enter your player name."}
	ErrInvalidEdition      = &ServiceError{Message: "Please choose Java or Bedrock edition."}
	ErrNoPartySelected     = &ServiceError{Message: "Please choose a party to vote for."}
	ErrMissingRegistration = &ServiceError{Message: "Please fill in the candidate name, party name and password."}
	ErrDuplicateParty      = &ServiceError{Message: "A party with this name already exists. Please choose a different party name."}
	ErrInvalidCredentials  = &ServiceError{Message: "Invalid Party Name or Password."}
	ErrNotAnImage          = &ServiceError{Message: "Please choose an image file for the party logo."}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// UserMessage returns the text shown to the user
func (e *ServiceError) UserMessage() string {
	return e.Message
}

// DisabledError is returned when a feature is switched off
type DisabledError struct {
	Feature string
	Message string
}

func (e *DisabledError) Error() string {
	return fmt.Sprintf("%s disabled: %s", e.Feature, e.Message)
}

// UserMessage returns the configured message for the disabled feature
func (e *DisabledError) UserMessage() string {
	return e.Message
}

// LogoTooLargeError is returned for a logo above the size limit
type LogoTooLargeError struct {
	Size  int64
	Limit int64
	label string
}

func (e *LogoTooLargeError) Error() string {
	return fmt.Sprintf("logo is %d bytes, limit is %d", e.Size, e.Limit)
}

// UserMessage returns the text shown to the user
func (e *LogoTooLargeError) UserMessage() string {
	return fmt.Sprintf("Image size should be less than %s.", e.label)
}
