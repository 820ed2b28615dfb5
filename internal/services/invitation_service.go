package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syncspace-dev/syncspace/internal/auth"
	"github.com/syncspace-dev/syncspace/internal/constants"
	"github.com/syncspace-dev/syncspace/internal/models"
	"github.com/syncspace-dev/syncspace/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvitationNotFound        = errors.New("invitation not found")
	ErrInvitationInvalid         = errors.New("invalid or expired invitation")
	ErrInvitationAlreadyAccepted = errors.New("invitation has already been accepted")
	ErrInvitationExpired         = errors.New("invitation has expired")
	ErrRegistrationRequired      = errors.New("name and password are required for new users")
	ErrNotOrganizationAdmin      = errors.New("only organization admins can send invitations")
	ErrMailDeliveryFailed        = errors.New("failed to deliver invitation email")
)

// InvitationService owns the invitation lifecycle: issue, deliver,
// verify, and consume exactly once.
type InvitationService struct {
	invitationRepo repository.InvitationRepository
	orgRepo        repository.OrganizationRepository
	userRepo       repository.UserRepository
	codec          *auth.Codec
	mailer         Mailer
	clientURL      string
	ttl            time.Duration
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	orgRepo repository.OrganizationRepository,
	userRepo repository.UserRepository,
	codec *auth.Codec,
	mailer Mailer,
	clientURL string,
	ttl time.Duration,
) *InvitationService {
	if ttl <= 0 {
		ttl = constants.DefaultInvitationTTL
	}
	return &InvitationService{
		invitationRepo: invitationRepo,
		orgRepo:        orgRepo,
		userRepo:       userRepo,
		codec:          codec,
		mailer:         mailer,
		clientURL:      clientURL,
		ttl:            ttl,
	}
}

// InviteInput represents parameters to issue an invitation.
type InviteInput struct {
	OrganizationID uint64
	Email          string
	Role           models.OrganizationRole
	InviterID      uint64
}

// Invite issues a pending invitation and delivers the deep link by
// email. The invitation row is persisted before delivery is attempted,
// matching the issue-then-deliver order of the lifecycle; a mail
// failure surfaces as ErrMailDeliveryFailed with the row still pending.
func (s *InvitationService) Invite(input InviteInput) (*models.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	role := input.Role
	if role == "" {
		role = models.OrgRoleMember
	}

	org, err := s.orgRepo.FindByID(input.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	inviter, err := s.orgRepo.FindMember(org.ID, input.InviterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationAdmin
		}
		return nil, fmt.Errorf("failed to find inviter membership: %w", err)
	}
	if inviter.Role != models.OrgRoleAdmin {
		return nil, ErrNotOrganizationAdmin
	}

	token, err := s.codec.IssueInvitation(email, org.ID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue invitation token: %w", err)
	}

	invitation := &models.Invitation{
		Email:          email,
		OrganizationID: org.ID,
		Role:           role,
		InviterID:      input.InviterID,
		Token:          token,
		Status:         models.InvitationPending,
		ExpiresAt:      time.Now().Add(s.ttl),
	}

	if err := s.invitationRepo.Create(invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	inviteLink := fmt.Sprintf("%s/invite/%s", s.clientURL, token)
	if err := s.mailer.SendInvitation(email, org.Name, role, inviteLink); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}

	return invitation, nil
}

// Verify decodes a token and confirms a matching pending, unexpired
// invitation exists. It mutates nothing, so a client can pre-fill a
// registration form before committing.
func (s *InvitationService) Verify(token string) (*auth.InvitationClaims, error) {
	claims, err := s.codec.VerifyInvitation(token)
	if err != nil {
		return nil, ErrInvitationInvalid
	}

	invitation, err := s.invitationRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationInvalid
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if invitation.Status != models.InvitationPending {
		return nil, ErrInvitationInvalid
	}
	if time.Now().After(invitation.ExpiresAt) {
		if err := s.invitationRepo.MarkExpired(token); err != nil {
			return nil, fmt.Errorf("failed to expire invitation: %w", err)
		}
		return nil, ErrInvitationInvalid
	}

	return claims, nil
}

// AcceptInput carries the registration info for a user accepting an
// invitation. Name and Password are required only when no user with
// the invited email exists yet.
type AcceptInput struct {
	Token    string
	Name     string
	Password string
}

// Accept consumes an invitation exactly once: it resolves or creates
// the user, admits them into the organization idempotently, and flips
// the invitation to accepted — all inside one transaction. A second
// accept for the same token reports a conflict, never a double
// admission.
func (s *InvitationService) Accept(input AcceptInput) (*models.User, models.OrganizationRole, error) {
	if _, err := s.codec.VerifyInvitation(input.Token); err != nil {
		return nil, "", ErrInvitationInvalid
	}

	invitation, err := s.invitationRepo.FindByToken(input.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvitationNotFound
		}
		return nil, "", fmt.Errorf("failed to find invitation: %w", err)
	}

	if invitation.Status != models.InvitationPending {
		return nil, "", ErrInvitationAlreadyAccepted
	}
	if time.Now().After(invitation.ExpiresAt) {
		if err := s.invitationRepo.MarkExpired(input.Token); err != nil {
			return nil, "", fmt.Errorf("failed to expire invitation: %w", err)
		}
		return nil, "", ErrInvitationExpired
	}

	user, err := s.resolveUser(invitation, input)
	if err != nil {
		return nil, "", err
	}

	if err := s.invitationRepo.Accept(input.Token, user, invitation.Role); err != nil {
		if errors.Is(err, repository.ErrInvitationNotPending) {
			return nil, "", ErrInvitationAlreadyAccepted
		}
		return nil, "", fmt.Errorf("failed to accept invitation: %w", err)
	}

	return user, invitation.Role, nil
}

// resolveUser reuses an existing account with the invited email or
// builds a new one from the registration info. New users are persisted
// inside the accept transaction, not here.
func (s *InvitationService) resolveUser(invitation *models.Invitation, input AcceptInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(invitation.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" || input.Password == "" {
		return nil, ErrRegistrationRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	return &models.User{
		Name:         name,
		Email:        invitation.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.UserRoleMember,
	}, nil
}
