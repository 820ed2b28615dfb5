package constants

import "time"

// Context keys
const (
	ContextKeyUserID       = "user_id"
	ContextKeyUser         = "current_user"
	ContextKeyOrganization = "organization"
	ContextKeyOrgMember    = "organization_member"
	ContextKeyProject      = "project"
	ContextKeyTask         = "task"
)

// Session
const (
	SessionCookieName = "syncspace_token"
	SessionTTL        = 7 * 24 * time.Hour
)

// Invitations
const (
	DefaultInvitationTTL = 72 * time.Hour
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxNameLength     = 255
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AI task generation
const (
	MaxAIGeneratedTasks = 20
)
