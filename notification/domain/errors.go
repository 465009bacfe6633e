package domain

import "errors"

var (
	ErrDeliveryNotFound    = errors.New("delivery not found")
	ErrDuplicateDelivery   = errors.New("delivery already scheduled for this key")
	ErrInvalidTransition   = errors.New("invalid delivery status transition")
	ErrDeliveryNotClaimed  = errors.New("delivery not claimed by this worker")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrCampaignNotFound    = errors.New("campaign not found")
	ErrPreferencesNotFound = errors.New("notification preferences not found")
	ErrNoAdapterForChannel = errors.New("no adapter registered for channel")
)
